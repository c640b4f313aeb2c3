package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/widget-dashboard/internal/dto"
	"github.com/GregMSThompson/widget-dashboard/internal/middleware"
)

type InstanceService interface {
	MountWidget(ctx context.Context, uid, widgetID string, req dto.MountWidgetRequest) (dto.InstanceResponse, error)
	MountPreview(ctx context.Context, uid string, req dto.PreviewWidgetRequest) (dto.InstanceResponse, error)
	GetInstance(ctx context.Context, uid, instanceID string) (dto.InstanceResponse, error)
	RefreshInstance(ctx context.Context, uid, instanceID string) error
	RefreshAll(ctx context.Context, uid string) (dto.RefreshAllResponse, error)
	UnmountInstance(ctx context.Context, uid, instanceID string) error
}

func (h *dashboardHandlers) MountWidget(w http.ResponseWriter, r *http.Request) {
	widgetID := chi.URLParam(r, "widgetId")
	var req dto.MountWidgetRequest
	if err := decodeJSON(r, &req, true); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	inst, err := h.InstanceSvc.MountWidget(r.Context(), uid, widgetID, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, inst)
}

func (h *dashboardHandlers) MountPreview(w http.ResponseWriter, r *http.Request) {
	var req dto.PreviewWidgetRequest
	if err := decodeJSON(r, &req, false); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	inst, err := h.InstanceSvc.MountPreview(r.Context(), uid, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, inst)
}

func (h *dashboardHandlers) GetInstance(w http.ResponseWriter, r *http.Request) {
	instanceID := chi.URLParam(r, "instanceId")
	uid := middleware.UID(r.Context())
	inst, err := h.InstanceSvc.GetInstance(r.Context(), uid, instanceID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, inst)
}

// RefreshInstance accepts the request; the new data lands asynchronously.
func (h *dashboardHandlers) RefreshInstance(w http.ResponseWriter, r *http.Request) {
	instanceID := chi.URLParam(r, "instanceId")
	uid := middleware.UID(r.Context())
	if err := h.InstanceSvc.RefreshInstance(r.Context(), uid, instanceID); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusAccepted, nil)
}

func (h *dashboardHandlers) RefreshAll(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	resp, err := h.InstanceSvc.RefreshAll(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusAccepted, resp)
}

func (h *dashboardHandlers) UnmountInstance(w http.ResponseWriter, r *http.Request) {
	instanceID := chi.URLParam(r, "instanceId")
	uid := middleware.UID(r.Context())
	if err := h.InstanceSvc.UnmountInstance(r.Context(), uid, instanceID); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}
