// Package transform reshapes normalized plugin data before presentation:
// client-side grouping and aggregation for charts, and field selection for cards.
package transform

import "github.com/GregMSThompson/widget-dashboard/internal/models"

// Apply transforms data for cfg's display type. Only chart and cards are
// transformed; every other display type receives data unchanged.
func Apply(cfg models.WidgetConfig, data any) any {
	switch cfg.DisplayType {
	case models.DisplayChart:
		return chartData(cfg, data)
	case models.DisplayCards:
		return cardData(cfg, data)
	default:
		return data
	}
}

func chartData(cfg models.WidgetConfig, data any) any {
	if cfg.GroupBy != nil && cfg.GroupBy.Field != "" {
		if arr, ok := AsArray(data); ok {
			return toAny(Group(arr, *cfg.GroupBy))
		}
	}
	if series := Series(data); series != nil {
		return toAny(series)
	}
	return data
}

func cardData(cfg models.WidgetConfig, data any) any {
	if cfg.FieldSelection == nil || !cfg.FieldSelection.Enabled {
		return data
	}
	if arr, ok := AsArray(data); ok {
		out := make([]any, 0, len(arr))
		for _, item := range arr {
			if rec, ok := AsRecord(item); ok {
				out = append(out, SelectFields(rec, cfg.FieldSelection))
				continue
			}
			out = append(out, item)
		}
		return out
	}
	if rec, ok := AsRecord(data); ok {
		return SelectFields(rec, cfg.FieldSelection)
	}
	return data
}

func toAny(records []map[string]any) []any {
	out := make([]any, len(records))
	for i, r := range records {
		out[i] = r
	}
	return out
}
