package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/GregMSThompson/widget-dashboard/internal/dto"
	"github.com/GregMSThompson/widget-dashboard/internal/errs"
	"github.com/GregMSThompson/widget-dashboard/internal/models"
	"github.com/GregMSThompson/widget-dashboard/internal/pipeline"
	"github.com/GregMSThompson/widget-dashboard/pkg/helpers"
)

// --- Fakes ---

type fakeWidgetStore struct {
	widgets          map[string]*models.Widget
	createErr        error
	getErr           error
	listErr          error
	updateErr        error
	deleteErr        error
	bulkPositionsErr error
	lastPositions    map[string]int
}

func newFakeStore() *fakeWidgetStore {
	return &fakeWidgetStore{widgets: make(map[string]*models.Widget)}
}

func (f *fakeWidgetStore) Create(_ context.Context, _ string, w *models.Widget) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.widgets[w.WidgetID] = w
	return nil
}

func (f *fakeWidgetStore) Get(_ context.Context, _, widgetID string) (*models.Widget, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	w, ok := f.widgets[widgetID]
	if !ok {
		return nil, errs.NewNotFoundError("widget not found")
	}
	return w, nil
}

func (f *fakeWidgetStore) List(_ context.Context, _ string) ([]*models.Widget, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*models.Widget, 0, len(f.widgets))
	for _, w := range f.widgets {
		out = append(out, w)
	}
	return out, nil
}

func (f *fakeWidgetStore) UpdateConfig(_ context.Context, _, widgetID string, cfg models.WidgetConfig) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	w, ok := f.widgets[widgetID]
	if !ok {
		return errs.NewNotFoundError("widget not found")
	}
	w.Config = cfg
	return nil
}

func (f *fakeWidgetStore) Delete(_ context.Context, _, widgetID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.widgets, widgetID)
	return nil
}

func (f *fakeWidgetStore) Count(_ context.Context, _ string) (int, error) {
	return len(f.widgets), nil
}

func (f *fakeWidgetStore) BulkUpdatePositions(_ context.Context, _ string, positions map[string]int) error {
	if f.bulkPositionsErr != nil {
		return f.bulkPositionsErr
	}
	f.lastPositions = positions
	return nil
}

type fakeExecutor struct {
	result   pipeline.Result
	err      error
	calls    int
	lastCfg  models.WidgetConfig
	lastVars pipeline.Params
}

func (f *fakeExecutor) Execute(_ context.Context, cfg models.WidgetConfig, vars pipeline.Params) (pipeline.Result, error) {
	f.calls++
	f.lastCfg = cfg
	f.lastVars = vars
	return f.result, f.err
}

func validConfig() models.WidgetConfig {
	return models.WidgetConfig{
		Name:        "Open tickets",
		PluginName:  "jira",
		InstanceID:  "prod",
		QueryID:     "open-tickets",
		DisplayType: models.DisplayMetric,
	}
}

// --- AddWidget ---

func TestAddWidget_OK(t *testing.T) {
	store := newFakeStore()
	svc := NewDashboardService(store, &fakeExecutor{})

	w, err := svc.AddWidget(helpers.TestCtx(), "uid1", dto.CreateWidgetRequest{Config: validConfig()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.WidgetID == "" {
		t.Fatal("expected a widget id")
	}
	if w.Position != 1 {
		t.Errorf("expected position 1, got %d", w.Position)
	}
	if w.Config.QueryType != models.QueryTypeDefault {
		t.Errorf("expected queryType default, got %q", w.Config.QueryType)
	}
	if _, ok := store.widgets[w.WidgetID]; !ok {
		t.Error("widget was not persisted")
	}
}

func TestAddWidget_ChartDefaultsToBar(t *testing.T) {
	cfg := validConfig()
	cfg.DisplayType = models.DisplayChart
	svc := NewDashboardService(newFakeStore(), &fakeExecutor{})

	w, err := svc.AddWidget(helpers.TestCtx(), "uid1", dto.CreateWidgetRequest{Config: cfg})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Config.ChartType != models.ChartBar {
		t.Errorf("expected bar chart, got %q", w.Config.ChartType)
	}
}

func TestAddWidget_AllowsMissingQuery(t *testing.T) {
	cfg := validConfig()
	cfg.QueryID = ""
	svc := NewDashboardService(newFakeStore(), &fakeExecutor{})

	if _, err := svc.AddWidget(helpers.TestCtx(), "uid1", dto.CreateWidgetRequest{Config: cfg}); err != nil {
		t.Fatalf("half-configured widgets should save, got %v", err)
	}
}

func TestAddWidget_ValidationErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*models.WidgetConfig)
	}{
		{"missing name", func(c *models.WidgetConfig) { c.Name = " " }},
		{"missing plugin", func(c *models.WidgetConfig) { c.PluginName = "" }},
		{"missing instance", func(c *models.WidgetConfig) { c.InstanceID = "" }},
		{"bad query type", func(c *models.WidgetConfig) { c.QueryType = "sql" }},
		{"bad display type", func(c *models.WidgetConfig) { c.DisplayType = "heatmap" }},
		{"bad chart type", func(c *models.WidgetConfig) { c.ChartType = "radar" }},
		{"negative interval", func(c *models.WidgetConfig) { c.RefreshInterval = -1 }},
		{"bad aggregation", func(c *models.WidgetConfig) { c.Aggregation = &models.Aggregation{Function: "median"} }},
		{"group by without field", func(c *models.WidgetConfig) { c.GroupBy = &models.GroupBy{} }},
		{"group by bad sort", func(c *models.WidgetConfig) { c.GroupBy = &models.GroupBy{Field: "status", SortBy: "sideways"} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			svc := NewDashboardService(newFakeStore(), &fakeExecutor{})

			_, err := svc.AddWidget(helpers.TestCtx(), "uid1", dto.CreateWidgetRequest{Config: cfg})
			var ve *errs.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestAddWidget_StoreError(t *testing.T) {
	store := newFakeStore()
	store.createErr = errs.NewDatabaseError("create", "failed", errors.New("boom"))
	svc := NewDashboardService(store, &fakeExecutor{})

	if _, err := svc.AddWidget(helpers.TestCtx(), "uid1", dto.CreateWidgetRequest{Config: validConfig()}); err == nil {
		t.Fatal("expected error")
	}
}

// --- UpdateWidgetConfig ---

func TestUpdateWidgetConfig_ReplacesConfig(t *testing.T) {
	store := newFakeStore()
	store.widgets["w1"] = &models.Widget{WidgetID: "w1", Config: validConfig()}
	svc := NewDashboardService(store, &fakeExecutor{})

	next := validConfig()
	next.Name = "Closed tickets"
	next.DisplayType = models.DisplayTable
	w, err := svc.UpdateWidgetConfig(helpers.TestCtx(), "uid1", "w1", dto.UpdateWidgetConfigRequest{Config: next})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Config.Name != "Closed tickets" || w.Config.DisplayType != models.DisplayTable {
		t.Errorf("config not replaced: %+v", w.Config)
	}
}

func TestUpdateWidgetConfig_NotFound(t *testing.T) {
	svc := NewDashboardService(newFakeStore(), &fakeExecutor{})

	_, err := svc.UpdateWidgetConfig(helpers.TestCtx(), "uid1", "missing", dto.UpdateWidgetConfigRequest{Config: validConfig()})
	var nf *errs.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

// --- ReorderWidgets ---

func TestReorderWidgets_PassesPositions(t *testing.T) {
	store := newFakeStore()
	svc := NewDashboardService(store, &fakeExecutor{})

	err := svc.ReorderWidgets(helpers.TestCtx(), "uid1", dto.ReorderWidgetsRequest{
		WidgetOrder: []dto.ReorderWidgetItem{{WidgetID: "w1", Position: 2}, {WidgetID: "w2", Position: 1}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.lastPositions["w1"] != 2 || store.lastPositions["w2"] != 1 {
		t.Errorf("unexpected positions: %v", store.lastPositions)
	}
}

func TestReorderWidgets_Empty(t *testing.T) {
	svc := NewDashboardService(newFakeStore(), &fakeExecutor{})

	err := svc.ReorderWidgets(helpers.TestCtx(), "uid1", dto.ReorderWidgetsRequest{})
	var ve *errs.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

// --- GetWidgetData ---

func TestGetWidgetData_ResolvesContextAndRenders(t *testing.T) {
	store := newFakeStore()
	cfg := validConfig()
	cfg.ValueField = "open"
	store.widgets["w1"] = &models.Widget{WidgetID: "w1", Config: cfg}
	fetchedAt := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	exec := &fakeExecutor{result: pipeline.Result{Data: map[string]any{"open": 12.0}, FetchedAt: fetchedAt}}
	svc := NewDashboardService(store, exec)

	resp, err := svc.GetWidgetData(helpers.TestCtx(), "uid1", "w1", dto.PageContext{
		Path:   "/clients/42/overview",
		Entity: &models.EntityContext{ShortName: "ACME"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exec.lastVars["clientId"] != int64(42) {
		t.Errorf("expected clientId 42 in vars, got %v", exec.lastVars)
	}
	if resp.WidgetID != "w1" || !resp.LastUpdated.Equal(fetchedAt) {
		t.Errorf("unexpected response header fields: %+v", resp)
	}
	if resp.View.Metric == nil || resp.View.Metric.Value != 12 {
		t.Fatalf("expected metric 12, got %+v", resp.View.Metric)
	}
}

func TestGetWidgetData_ExecutorError(t *testing.T) {
	store := newFakeStore()
	store.widgets["w1"] = &models.Widget{WidgetID: "w1", Config: validConfig()}
	svc := NewDashboardService(store, &fakeExecutor{err: errs.NewDataError("query failed")})

	_, err := svc.GetWidgetData(helpers.TestCtx(), "uid1", "w1", dto.PageContext{})
	var de *errs.DataError
	if !errors.As(err, &de) {
		t.Fatalf("expected DataError, got %v", err)
	}
}

func TestGetWidgetData_NotFound(t *testing.T) {
	exec := &fakeExecutor{}
	svc := NewDashboardService(newFakeStore(), exec)

	if _, err := svc.GetWidgetData(helpers.TestCtx(), "uid1", "nope", dto.PageContext{}); err == nil {
		t.Fatal("expected error")
	}
	if exec.calls != 0 {
		t.Errorf("executor should not run for a missing widget")
	}
}

// --- PreviewWidget ---

func TestPreviewWidget_StaticDataSkipsExecutor(t *testing.T) {
	exec := &fakeExecutor{}
	svc := NewDashboardService(newFakeStore(), exec)

	cfg := validConfig()
	cfg.DisplayType = models.DisplayTable
	resp, err := svc.PreviewWidget(helpers.TestCtx(), dto.PreviewWidgetRequest{
		Config: cfg,
		Data:   []any{map[string]any{"id": 1.0}, map[string]any{"id": 2.0}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exec.calls != 0 {
		t.Fatalf("preview data must not reach the plugin")
	}
	if resp.View.Table == nil || len(resp.View.Table.Rows) != 2 {
		t.Fatalf("expected 2 table rows, got %+v", resp.View.Table)
	}
}

func TestPreviewWidget_ExecutesWithoutData(t *testing.T) {
	exec := &fakeExecutor{result: pipeline.Result{Data: 5.0}}
	svc := NewDashboardService(newFakeStore(), exec)

	cfg := validConfig()
	cfg.DisplayType = models.DisplayNumber
	resp, err := svc.PreviewWidget(helpers.TestCtx(), dto.PreviewWidgetRequest{Config: cfg})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exec.calls != 1 {
		t.Fatalf("expected one execution, got %d", exec.calls)
	}
	if resp.View.Metric == nil || resp.View.Metric.Value != 5 {
		t.Fatalf("expected number 5, got %+v", resp.View.Metric)
	}
}
