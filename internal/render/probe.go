package render

import (
	"github.com/GregMSThompson/widget-dashboard/internal/models"
	"github.com/GregMSThompson/widget-dashboard/internal/transform"
)

var valueKeys = []string{"value", "count", "total"}

// probed is the outcome of a heuristic field lookup.
type probed struct {
	value float64
	field string
	ok    bool
}

// probeValue finds the headline number in data. Scalars convert directly; an
// array probes its first record or, failing that, reports its length. On an
// object the explicit valueField wins, then the given candidates, then
// value/count/total, then the lexicographically first numeric field.
func probeValue(data any, cfg models.WidgetConfig, candidates ...string) probed {
	if arr, ok := transform.AsArray(data); ok {
		if len(arr) > 0 {
			if rec, ok := transform.AsRecord(arr[0]); ok {
				return probeRecord(rec, cfg, candidates)
			}
		}
		return probed{value: float64(len(arr)), field: "count", ok: true}
	}
	if rec, ok := transform.AsRecord(data); ok {
		return probeRecord(rec, cfg, candidates)
	}
	if n, ok := transform.ToNumber(data); ok {
		return probed{value: n, ok: true}
	}
	return probed{}
}

func probeRecord(rec map[string]any, cfg models.WidgetConfig, candidates []string) probed {
	keys := make([]string, 0, len(candidates)+len(valueKeys)+1)
	if cfg.ValueField != "" {
		keys = append(keys, cfg.ValueField)
	}
	keys = append(keys, candidates...)
	keys = append(keys, valueKeys...)

	for _, k := range keys {
		if n, ok := transform.ToNumber(rec[k]); ok {
			return probed{value: n, field: k, ok: true}
		}
	}
	for _, k := range transform.SortedKeys(rec) {
		if n, ok := numericField(rec[k]); ok {
			return probed{value: n, field: k, ok: true}
		}
	}
	return probed{}
}

// numericField accepts only JSON numbers; numeric-looking strings such as ids
// are not guessed at during the fallback scan.
func numericField(v any) (float64, bool) {
	if _, isString := v.(string); isString {
		return 0, false
	}
	return transform.ToNumber(v)
}

// lookup returns the first key of rec that holds a number.
func lookup(rec map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		if n, ok := transform.ToNumber(rec[k]); ok {
			return n, true
		}
	}
	return 0, false
}

// changeFrom derives a percentage change from an explicit change field or
// from current/previous and value/baseline pairs.
func changeFrom(data any) (float64, bool) {
	rec, ok := transform.AsRecord(data)
	if !ok {
		if arr, isArr := transform.AsArray(data); isArr && len(arr) > 0 {
			rec, ok = transform.AsRecord(arr[0])
		}
	}
	if !ok {
		return 0, false
	}

	if n, ok := lookup(rec, "change", "trend", "changePercent"); ok {
		return n, true
	}
	pairs := [][2]string{{"current", "previous"}, {"value", "baseline"}, {"value", "previous"}}
	for _, p := range pairs {
		cur, okCur := transform.ToNumber(rec[p[0]])
		prev, okPrev := transform.ToNumber(rec[p[1]])
		if okCur && okPrev {
			return Change(cur, prev), true
		}
	}
	return 0, false
}

func label(field string, cfg models.WidgetConfig) string {
	if field != "" && field != "value" {
		return transform.HumanizeKey(field)
	}
	if cfg.Name != "" {
		return cfg.Name
	}
	return "Value"
}
