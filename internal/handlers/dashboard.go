package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/widget-dashboard/internal/dto"
	"github.com/GregMSThompson/widget-dashboard/internal/middleware"
	"github.com/GregMSThompson/widget-dashboard/internal/models"
	"github.com/GregMSThompson/widget-dashboard/internal/response"
)

type DashboardService interface {
	GetDashboard(ctx context.Context, uid string) ([]*models.Widget, error)
	AddWidget(ctx context.Context, uid string, req dto.CreateWidgetRequest) (*models.Widget, error)
	UpdateWidgetConfig(ctx context.Context, uid, widgetID string, req dto.UpdateWidgetConfigRequest) (*models.Widget, error)
	ReorderWidgets(ctx context.Context, uid string, req dto.ReorderWidgetsRequest) error
	DeleteWidget(ctx context.Context, uid, widgetID string) error
	GetWidgetData(ctx context.Context, uid, widgetID string, page dto.PageContext) (dto.WidgetDataResponse, error)
	PreviewWidget(ctx context.Context, req dto.PreviewWidgetRequest) (dto.WidgetDataResponse, error)
}

type dashboardHandlers struct {
	ResponseHandler response.ResponseHandler
	DashboardSvc    DashboardService
	InstanceSvc     InstanceService
}

func NewDashboardHandlers(deps *Deps) *dashboardHandlers {
	return &dashboardHandlers{
		ResponseHandler: deps.ResponseHandler,
		DashboardSvc:    deps.DashboardSvc,
		InstanceSvc:     deps.InstanceSvc,
	}
}

func (h *dashboardHandlers) DashboardRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetDashboard)
	r.Post("/widgets", h.AddWidget)
	r.Put("/widgets/reorder", h.ReorderWidgets) // must be before /{widgetId}
	r.Put("/widgets/{widgetId}", h.UpdateWidgetConfig)
	r.Delete("/widgets/{widgetId}", h.DeleteWidget)
	r.Get("/widgets/{widgetId}/data", h.GetWidgetData)
	r.Post("/widgets/{widgetId}/instances", h.MountWidget)
	r.Post("/preview", h.PreviewWidget)
	r.Post("/preview/instances", h.MountPreview)
	r.Get("/instances/{instanceId}", h.GetInstance)
	r.Delete("/instances/{instanceId}", h.UnmountInstance)
	r.Post("/instances/{instanceId}/refresh", h.RefreshInstance)
	r.Post("/refresh", h.RefreshAll)
	r.Get("/widget-types", h.GetWidgetTypes)
	return r
}

func (h *dashboardHandlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	widgets, err := h.DashboardSvc.GetDashboard(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, widgets)
}

func (h *dashboardHandlers) AddWidget(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateWidgetRequest
	if err := decodeJSON(r, &req, false); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	widget, err := h.DashboardSvc.AddWidget(r.Context(), uid, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, widget)
}

func (h *dashboardHandlers) UpdateWidgetConfig(w http.ResponseWriter, r *http.Request) {
	widgetID := chi.URLParam(r, "widgetId")
	var req dto.UpdateWidgetConfigRequest
	if err := decodeJSON(r, &req, false); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	widget, err := h.DashboardSvc.UpdateWidgetConfig(r.Context(), uid, widgetID, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, widget)
}

func (h *dashboardHandlers) ReorderWidgets(w http.ResponseWriter, r *http.Request) {
	var req dto.ReorderWidgetsRequest
	if err := decodeJSON(r, &req, false); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	if err := h.DashboardSvc.ReorderWidgets(r.Context(), uid, req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *dashboardHandlers) DeleteWidget(w http.ResponseWriter, r *http.Request) {
	widgetID := chi.URLParam(r, "widgetId")
	uid := middleware.UID(r.Context())
	if err := h.DashboardSvc.DeleteWidget(r.Context(), uid, widgetID); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *dashboardHandlers) GetWidgetData(w http.ResponseWriter, r *http.Request) {
	widgetID := chi.URLParam(r, "widgetId")
	uid := middleware.UID(r.Context())
	data, err := h.DashboardSvc.GetWidgetData(r.Context(), uid, widgetID, pageContextFromQuery(r))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, data)
}

func (h *dashboardHandlers) PreviewWidget(w http.ResponseWriter, r *http.Request) {
	var req dto.PreviewWidgetRequest
	if err := decodeJSON(r, &req, false); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	data, err := h.DashboardSvc.PreviewWidget(r.Context(), req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, data)
}

// GetWidgetTypes returns the catalog of display and chart types with the
// options each one reads.
func (h *dashboardHandlers) GetWidgetTypes(w http.ResponseWriter, r *http.Request) {
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, widgetTypeCatalog)
}

type widgetTypeEntry struct {
	DisplayType models.DisplayType `json:"displayType"`
	ChartTypes  []models.ChartType `json:"chartTypes,omitempty"`
	Options     []string           `json:"options,omitempty"`
}

var widgetTypeCatalog = []widgetTypeEntry{
	{DisplayType: models.DisplayTable},
	{DisplayType: models.DisplayChart, ChartTypes: models.ChartTypes, Options: []string{"groupBy"}},
	{DisplayType: models.DisplayMetric, Options: []string{"valueField"}},
	{DisplayType: models.DisplayNumber, Options: []string{"valueField"}},
	{DisplayType: models.DisplayStatistic, Options: []string{"valueField"}},
	{DisplayType: models.DisplayPercentage, Options: []string{"valueField", "aggregation"}},
	{DisplayType: models.DisplayGauge, Options: []string{"valueField"}},
	{DisplayType: models.DisplayProgress, Options: []string{"valueField"}},
	{DisplayType: models.DisplayTrend, Options: []string{"valueField"}},
	{DisplayType: models.DisplayList},
	{DisplayType: models.DisplayQuery},
	{DisplayType: models.DisplayCards, Options: []string{"fieldSelection"}},
	{DisplayType: models.DisplaySummary},
}
