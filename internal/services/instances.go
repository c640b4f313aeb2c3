package services

import (
	"context"
	"errors"
	"sync"

	"github.com/GregMSThompson/widget-dashboard/internal/dto"
	"github.com/GregMSThompson/widget-dashboard/internal/errs"
	"github.com/GregMSThompson/widget-dashboard/internal/models"
	"github.com/GregMSThompson/widget-dashboard/internal/pipeline"
	"github.com/GregMSThompson/widget-dashboard/internal/refresh"
)

type widgetReader interface {
	Get(ctx context.Context, uid, widgetID string) (*models.Widget, error)
}

// instanceController is the lifecycle surface used here; *refresh.Controller satisfies it.
type instanceController interface {
	Mount(req refresh.MountRequest) *refresh.Instance
	Get(id string) (*refresh.Instance, error)
	Unmount(id string) error
	Refresh(id string) error
	OnUnmount(fn func(instanceID string))
}

type instanceOwner struct {
	uid      string
	widgetID string
}

// instanceService scopes mounted instances to the user who mounted them.
type instanceService struct {
	store widgetReader
	ctrl  instanceController

	mu     sync.RWMutex
	owners map[string]instanceOwner
}

func NewInstanceService(store widgetReader, ctrl instanceController) *instanceService {
	s := &instanceService{
		store:  store,
		ctrl:   ctrl,
		owners: make(map[string]instanceOwner),
	}
	// idle expiry unmounts behind our back; forget the owner with it
	ctrl.OnUnmount(s.disown)
	return s
}

// MountWidget places a saved widget on a page and starts its refresh lifecycle.
func (s *instanceService) MountWidget(ctx context.Context, uid, widgetID string, req dto.MountWidgetRequest) (dto.InstanceResponse, error) {
	w, err := s.store.Get(ctx, uid, widgetID)
	if err != nil {
		return dto.InstanceResponse{}, err
	}
	inst := s.ctrl.Mount(refresh.MountRequest{
		Config: w.Config,
		Vars:   pipeline.ResolveContext(req.Path, req.Entity),
	})
	s.own(inst.ID(), uid, widgetID)
	return toInstanceResponse(inst, widgetID), nil
}

// MountPreview mounts an unsaved configuration. With preview data the
// instance is loaded immediately and never fetches.
func (s *instanceService) MountPreview(ctx context.Context, uid string, req dto.PreviewWidgetRequest) (dto.InstanceResponse, error) {
	cfg := applyDefaults(req.Config)
	if err := validateConfig(cfg); err != nil {
		return dto.InstanceResponse{}, err
	}
	mr := refresh.MountRequest{
		Config: cfg,
		Vars:   pipeline.ResolveContext(req.Path, req.Entity),
	}
	if req.Data != nil {
		mr.Preview = &refresh.Preview{Data: req.Data}
	}
	inst := s.ctrl.Mount(mr)
	s.own(inst.ID(), uid, "")
	return toInstanceResponse(inst, ""), nil
}

func (s *instanceService) GetInstance(ctx context.Context, uid, instanceID string) (dto.InstanceResponse, error) {
	owner, err := s.owned(uid, instanceID)
	if err != nil {
		return dto.InstanceResponse{}, err
	}
	inst, err := s.ctrl.Get(instanceID)
	if err != nil {
		s.disown(instanceID)
		return dto.InstanceResponse{}, err
	}
	return toInstanceResponse(inst, owner.widgetID), nil
}

// RefreshInstance forces a fetch. The result lands asynchronously.
func (s *instanceService) RefreshInstance(ctx context.Context, uid, instanceID string) error {
	if _, err := s.owned(uid, instanceID); err != nil {
		return err
	}
	return s.ctrl.Refresh(instanceID)
}

// RefreshAll forces a fetch for every instance the user has mounted.
func (s *instanceService) RefreshAll(ctx context.Context, uid string) (dto.RefreshAllResponse, error) {
	var out dto.RefreshAllResponse
	for _, id := range s.ownedBy(uid) {
		if err := s.ctrl.Refresh(id); err != nil {
			var nf *errs.NotFoundError
			if errors.As(err, &nf) {
				s.disown(id)
				continue
			}
			return out, err
		}
		out.Refreshed++
	}
	return out, nil
}

func (s *instanceService) UnmountInstance(ctx context.Context, uid, instanceID string) error {
	if _, err := s.owned(uid, instanceID); err != nil {
		return err
	}
	s.disown(instanceID)
	return s.ctrl.Unmount(instanceID)
}

func (s *instanceService) own(instanceID, uid, widgetID string) {
	s.mu.Lock()
	s.owners[instanceID] = instanceOwner{uid: uid, widgetID: widgetID}
	s.mu.Unlock()
}

func (s *instanceService) disown(instanceID string) {
	s.mu.Lock()
	delete(s.owners, instanceID)
	s.mu.Unlock()
}

// owned reports another user's instance as missing.
func (s *instanceService) owned(uid, instanceID string) (instanceOwner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	owner, ok := s.owners[instanceID]
	if !ok || owner.uid != uid {
		return instanceOwner{}, errs.NewNotFoundError("widget instance not found")
	}
	return owner, nil
}

func (s *instanceService) ownedBy(uid string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for id, owner := range s.owners {
		if owner.uid == uid {
			ids = append(ids, id)
		}
	}
	return ids
}

func toInstanceResponse(inst *refresh.Instance, widgetID string) dto.InstanceResponse {
	return dto.InstanceResponse{
		InstanceID: inst.ID(),
		WidgetID:   widgetID,
		State:      inst.State(),
		View:       inst.View(),
	}
}
