package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/GregMSThompson/widget-dashboard/internal/dto"
	"github.com/GregMSThompson/widget-dashboard/internal/errs"
	"github.com/GregMSThompson/widget-dashboard/internal/models"
	"github.com/GregMSThompson/widget-dashboard/internal/pipeline"
	"github.com/GregMSThompson/widget-dashboard/internal/render"
	"github.com/GregMSThompson/widget-dashboard/internal/transform"
	"github.com/GregMSThompson/widget-dashboard/pkg/logger"
)

// widgetStore is the Firestore storage interface for widgets.
type widgetStore interface {
	Create(ctx context.Context, uid string, w *models.Widget) error
	Get(ctx context.Context, uid, widgetID string) (*models.Widget, error)
	List(ctx context.Context, uid string) ([]*models.Widget, error)
	UpdateConfig(ctx context.Context, uid, widgetID string, cfg models.WidgetConfig) error
	Delete(ctx context.Context, uid, widgetID string) error
	Count(ctx context.Context, uid string) (int, error)
	BulkUpdatePositions(ctx context.Context, uid string, positions map[string]int) error
}

// queryExecutor runs one plugin query; *pipeline.Executor satisfies it.
type queryExecutor interface {
	Execute(ctx context.Context, cfg models.WidgetConfig, vars pipeline.Params) (pipeline.Result, error)
}

type dashboardService struct {
	store    widgetStore
	executor queryExecutor
}

func NewDashboardService(store widgetStore, executor queryExecutor) *dashboardService {
	return &dashboardService{store: store, executor: executor}
}

// --- Public service methods ---

func (s *dashboardService) GetDashboard(ctx context.Context, uid string) ([]*models.Widget, error) {
	return s.store.List(ctx, uid)
}

func (s *dashboardService) AddWidget(ctx context.Context, uid string, req dto.CreateWidgetRequest) (*models.Widget, error) {
	cfg := applyDefaults(req.Config)
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	count, err := s.store.Count(ctx, uid)
	if err != nil {
		return nil, err
	}
	w := &models.Widget{
		WidgetID: uuid.New().String(),
		Position: count + 1,
		Config:   cfg,
	}
	if err := s.store.Create(ctx, uid, w); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("widget created", "widget_id", w.WidgetID, "plugin", cfg.PluginName, "display_type", cfg.DisplayType)
	return w, nil
}

// UpdateWidgetConfig replaces the configuration wholesale. Instances already
// mounted keep the configuration they were mounted with.
func (s *dashboardService) UpdateWidgetConfig(ctx context.Context, uid, widgetID string, req dto.UpdateWidgetConfigRequest) (*models.Widget, error) {
	cfg := applyDefaults(req.Config)
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if err := s.store.UpdateConfig(ctx, uid, widgetID, cfg); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, uid, widgetID)
}

func (s *dashboardService) ReorderWidgets(ctx context.Context, uid string, req dto.ReorderWidgetsRequest) error {
	if len(req.WidgetOrder) == 0 {
		return errs.NewValidationError("widgetOrder is required")
	}
	positions := make(map[string]int, len(req.WidgetOrder))
	for _, item := range req.WidgetOrder {
		if item.WidgetID == "" {
			return errs.NewValidationError("widgetOrder entries need a widgetId")
		}
		positions[item.WidgetID] = item.Position
	}
	return s.store.BulkUpdatePositions(ctx, uid, positions)
}

func (s *dashboardService) DeleteWidget(ctx context.Context, uid, widgetID string) error {
	return s.store.Delete(ctx, uid, widgetID)
}

// GetWidgetData runs the saved widget's query once and returns the
// transformed data alongside its rendered view.
func (s *dashboardService) GetWidgetData(ctx context.Context, uid, widgetID string, page dto.PageContext) (dto.WidgetDataResponse, error) {
	w, err := s.store.Get(ctx, uid, widgetID)
	if err != nil {
		return dto.WidgetDataResponse{}, err
	}
	resp, err := s.run(ctx, w.Config, page)
	if err != nil {
		return dto.WidgetDataResponse{}, err
	}
	resp.WidgetID = widgetID
	return resp, nil
}

// PreviewWidget renders an unsaved configuration. Supplied data is rendered
// directly and no plugin request is made.
func (s *dashboardService) PreviewWidget(ctx context.Context, req dto.PreviewWidgetRequest) (dto.WidgetDataResponse, error) {
	cfg := applyDefaults(req.Config)
	if err := validateConfig(cfg); err != nil {
		return dto.WidgetDataResponse{}, err
	}
	if req.Data != nil {
		data := transform.Apply(cfg, req.Data)
		return dto.WidgetDataResponse{
			Data: data,
			View: render.Render(cfg.DisplayType, data, cfg),
		}, nil
	}
	return s.run(ctx, cfg, req.PageContext)
}

func (s *dashboardService) run(ctx context.Context, cfg models.WidgetConfig, page dto.PageContext) (dto.WidgetDataResponse, error) {
	vars := pipeline.ResolveContext(page.Path, page.Entity)
	res, err := s.executor.Execute(ctx, cfg, vars)
	if err != nil {
		return dto.WidgetDataResponse{}, err
	}
	data := transform.Apply(cfg, res.Data)
	return dto.WidgetDataResponse{
		Data:        data,
		View:        render.Render(cfg.DisplayType, data, cfg),
		LastUpdated: res.FetchedAt,
	}, nil
}

// --- Validation ---

func applyDefaults(cfg models.WidgetConfig) models.WidgetConfig {
	if cfg.QueryType == "" {
		cfg.QueryType = models.QueryTypeDefault
	}
	if cfg.DisplayType == models.DisplayChart && cfg.ChartType == "" {
		cfg.ChartType = models.ChartBar
	}
	return cfg
}

// validateConfig checks the structure of a configuration. The query
// invariant is left to the executor so that a half-configured widget can be
// saved and shows its configuration error once mounted.
func validateConfig(cfg models.WidgetConfig) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return errs.NewValidationError("config.name is required")
	}
	if strings.TrimSpace(cfg.PluginName) == "" {
		return errs.NewValidationError("config.pluginName is required")
	}
	if strings.TrimSpace(cfg.InstanceID) == "" {
		return errs.NewValidationError("config.instanceId is required")
	}
	switch cfg.QueryType {
	case models.QueryTypeDefault, models.QueryTypeCustom:
	default:
		return errs.NewValidationError(fmt.Sprintf("config.queryType must be %q or %q", models.QueryTypeDefault, models.QueryTypeCustom))
	}
	if !cfg.DisplayType.Valid() {
		return errs.NewValidationError(fmt.Sprintf("unsupported displayType %q", cfg.DisplayType))
	}
	if cfg.ChartType != "" && !cfg.ChartType.Valid() {
		return errs.NewValidationError(fmt.Sprintf("unsupported chartType %q", cfg.ChartType))
	}
	if cfg.RefreshInterval < 0 {
		return errs.NewValidationError("config.refreshInterval cannot be negative")
	}
	if cfg.Aggregation != nil && !validAggregation(cfg.Aggregation.Function) {
		return errs.NewValidationError(fmt.Sprintf("unsupported aggregation function %q", cfg.Aggregation.Function))
	}
	if gb := cfg.GroupBy; gb != nil {
		if strings.TrimSpace(gb.Field) == "" {
			return errs.NewValidationError("config.groupBy.field is required")
		}
		if gb.AggregationFunction != "" && !validAggregation(gb.AggregationFunction) {
			return errs.NewValidationError(fmt.Sprintf("unsupported aggregation function %q", gb.AggregationFunction))
		}
		if gb.SortBy != "" && gb.SortBy != models.SortAsc && gb.SortBy != models.SortDesc {
			return errs.NewValidationError("config.groupBy.sortBy must be asc or desc")
		}
		if gb.Limit < 0 {
			return errs.NewValidationError("config.groupBy.limit cannot be negative")
		}
	}
	return nil
}

func validAggregation(fn models.AggregationFunction) bool {
	for _, f := range models.AggregationFunctions {
		if f == fn {
			return true
		}
	}
	return false
}
