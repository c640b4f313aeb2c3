package render

import (
	"github.com/GregMSThompson/widget-dashboard/internal/models"
	"github.com/GregMSThompson/widget-dashboard/internal/transform"
)

const maxTableRows = 10

func renderTable(v *View, data any) {
	arr, ok := transform.AsArray(data)
	if !ok {
		v.Placeholder = msgNotTable
		return
	}
	if len(arr) == 0 {
		v.Placeholder = msgNoData
		return
	}

	shown := arr
	if len(shown) > maxTableRows {
		shown = shown[:maxTableRows]
	}

	t := &TableView{Total: len(arr), Remaining: len(arr) - len(shown)}
	seen := map[string]bool{}
	for _, item := range shown {
		row, ok := transform.AsRecord(item)
		if !ok {
			row = map[string]any{"value": item}
		}
		for _, k := range transform.SortedKeys(row) {
			if !seen[k] {
				seen[k] = true
				t.Columns = append(t.Columns, k)
			}
		}
		t.Rows = append(t.Rows, row)
	}
	v.Table = t
}

func renderChart(v *View, data any, cfg models.WidgetConfig) {
	if !cfg.ChartType.Valid() {
		renderTable(v, data)
		return
	}

	var series []map[string]any
	if arr, ok := transform.AsArray(data); ok {
		series = transform.Series(arr)
	} else if rec, ok := transform.AsRecord(data); ok {
		series = transform.Series(rec)
	}
	if len(series) == 0 {
		v.Placeholder = msgNoData
		return
	}

	valueKey := "value"
	if cfg.GroupBy != nil && cfg.GroupBy.ValueField != "" {
		valueKey = cfg.GroupBy.ValueField
	}
	v.Chart = &ChartView{
		ChartType: cfg.ChartType,
		LabelKey:  "name",
		ValueKey:  valueKey,
		Series:    series,
	}
}
