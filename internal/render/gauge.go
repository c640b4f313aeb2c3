package render

import (
	"fmt"
	"math"

	"github.com/GregMSThompson/widget-dashboard/internal/models"
	"github.com/GregMSThompson/widget-dashboard/internal/transform"
)

const defaultMax = 100

func renderGauge(v *View, data any, cfg models.WidgetConfig) {
	v.Percent = ratio(data, cfg,
		[]string{"value", "current"},
		[]string{"max", "total", "target"},
		ColorTier)
}

func renderProgress(v *View, data any, cfg models.WidgetConfig) {
	v.Percent = ratio(data, cfg,
		[]string{"completed", "done", "value", "current"},
		[]string{"total", "target", "max"},
		ColorTier)
}

// ratio resolves a value against a maximum. A number is read as a value out
// of 100, an array by its length and an object by its value, max and
// percentage fields. The percentage is clamped to [0,100].
func ratio(data any, cfg models.WidgetConfig, valueFields, maxFields []string, tier func(float64) string) *PercentView {
	pv := &PercentView{Max: defaultMax, Label: label("", cfg)}

	var percent float64
	switch {
	case isRecord(data):
		rec, _ := transform.AsRecord(data)
		if cfg.ValueField != "" {
			valueFields = append([]string{cfg.ValueField}, valueFields...)
		}
		value, hasValue := lookup(rec, valueFields...)
		if limit, ok := lookup(rec, maxFields...); ok && limit > 0 {
			pv.Max = limit
		}
		if p, ok := lookup(rec, "percentage", "percent"); ok {
			percent, pv.Available = p, true
			if !hasValue {
				value = p * pv.Max / 100
			}
		} else if hasValue {
			percent, pv.Available = value/pv.Max*100, true
		}
		pv.Value = value
	default:
		if arr, ok := transform.AsArray(data); ok {
			pv.Value, pv.Available = float64(len(arr)), true
		} else if n, ok := transform.ToNumber(data); ok {
			pv.Value, pv.Available = n, true
		}
		percent = pv.Value / pv.Max * 100
	}

	percent = clamp(percent, 0, 100)
	pv.Percent = math.Round(percent*10) / 10
	pv.Display = fmt.Sprintf("%g%%", pv.Percent)
	pv.Tier = tier(pv.Percent)
	return pv
}

func isRecord(v any) bool {
	_, ok := transform.AsRecord(v)
	return ok
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
