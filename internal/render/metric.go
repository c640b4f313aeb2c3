package render

import (
	"fmt"
	"math"

	"github.com/GregMSThompson/widget-dashboard/internal/models"
	"github.com/GregMSThompson/widget-dashboard/internal/transform"
	"github.com/GregMSThompson/widget-dashboard/pkg/helpers"
)

func renderMetric(v *View, data any, cfg models.WidgetConfig) {
	p := probeValue(data, cfg)
	m := &MetricView{Value: p.value, Field: p.field, Label: label(p.field, cfg), Available: p.ok}
	if v.Type == models.DisplayNumber {
		if c, ok := changeFrom(data); ok {
			m.Change = helpers.Ptr(c)
		}
	}
	v.Metric = m
}

// renderStatistic shows the headline number with the remaining numeric fields
// of the record, or count/min/max/avg when given an array of numbers.
func renderStatistic(v *View, data any, cfg models.WidgetConfig) {
	if arr, ok := transform.AsArray(data); ok && len(arr) > 0 {
		if _, isRec := transform.AsRecord(arr[0]); !isRec {
			v.Statistic = numberStats(arr, cfg)
			return
		}
	}

	p := probeValue(data, cfg)
	s := &StatisticView{MetricView: MetricView{Value: p.value, Field: p.field, Label: label(p.field, cfg), Available: p.ok}}

	rec, _ := transform.AsRecord(data)
	if arr, ok := transform.AsArray(data); ok && len(arr) > 0 {
		rec, _ = transform.AsRecord(arr[0])
	}
	for _, k := range transform.SortedKeys(rec) {
		if k == p.field {
			continue
		}
		if n, ok := numericField(rec[k]); ok {
			s.Stats = append(s.Stats, Stat{Label: transform.HumanizeKey(k), Value: n})
		}
	}
	v.Statistic = s
}

func numberStats(arr []any, cfg models.WidgetConfig) *StatisticView {
	var (
		values []float64
		total  float64
		lo, hi = math.Inf(1), math.Inf(-1)
	)
	for _, item := range arr {
		n, ok := transform.ToNumber(item)
		if !ok {
			continue
		}
		values = append(values, n)
		total += n
		lo = math.Min(lo, n)
		hi = math.Max(hi, n)
	}

	s := &StatisticView{MetricView: MetricView{Value: float64(len(arr)), Field: "count", Label: label("count", cfg), Available: true}}
	if len(values) == 0 {
		return s
	}
	s.Stats = []Stat{
		{Label: "Total", Value: total},
		{Label: "Average", Value: total / float64(len(values))},
		{Label: "Min", Value: lo},
		{Label: "Max", Value: hi},
	}
	return s
}

// percentageKeys lists the fields a percentage widget probes for each
// aggregation function, ahead of the generic candidates.
var percentageKeys = map[models.AggregationFunction][]string{
	models.AggAvg:   {"average", "avg", "mean"},
	models.AggSum:   {"sum", "total"},
	models.AggCount: {"count"},
	models.AggMin:   {"min", "minimum"},
	models.AggMax:   {"max", "maximum"},
}

func renderPercentage(v *View, data any, cfg models.WidgetConfig) {
	var candidates []string
	if cfg.Aggregation != nil {
		candidates = append(candidates, percentageKeys[cfg.Aggregation.Function]...)
	}
	candidates = append(candidates, "percentage", "percent", "rate")

	p := probeValue(data, cfg, candidates...)
	rounded := math.Round(p.value)
	pv := &PercentView{
		Value:     rounded,
		Percent:   rounded,
		Display:   fmt.Sprintf("%.0f%%", rounded),
		Tier:      PercentageTier(rounded),
		Label:     label(p.field, cfg),
		Available: p.ok,
	}
	if c, ok := changeFrom(data); ok {
		pv.Change = helpers.Ptr(c)
	}
	v.Percent = pv
}

func renderTrend(v *View, data any, cfg models.WidgetConfig) {
	t := &TrendView{Direction: DirectionFlat, Label: label("", cfg)}

	rec, ok := transform.AsRecord(data)
	if arr, isArr := transform.AsArray(data); isArr {
		rec, ok = trendFromSeries(arr, cfg)
	}
	if !ok {
		if n, isNum := transform.ToNumber(data); isNum {
			t.Current, t.Available = n, true
		}
		v.Trend = t
		return
	}

	if cur, ok := lookup(rec, "current", "value"); ok {
		t.Current, t.Available = cur, true
	} else {
		p := probeRecord(rec, cfg, nil)
		t.Current, t.Available = p.value, p.ok
		t.Label = label(p.field, cfg)
	}
	t.Previous, _ = lookup(rec, "previous", "baseline")
	if c, ok := changeFrom(rec); ok {
		t.Change = c
	}

	switch {
	case t.Change > 0:
		t.Direction = DirectionUp
	case t.Change < 0:
		t.Direction = DirectionDown
	}
	v.Trend = t
}

// trendFromSeries compares the last two points of a series.
func trendFromSeries(arr []any, cfg models.WidgetConfig) (map[string]any, bool) {
	switch len(arr) {
	case 0:
		return nil, false
	case 1:
		if rec, ok := transform.AsRecord(arr[0]); ok {
			return rec, true
		}
		if n, ok := transform.ToNumber(arr[0]); ok {
			return map[string]any{"current": n}, true
		}
		return nil, false
	}

	point := func(item any) (float64, bool) {
		if rec, ok := transform.AsRecord(item); ok {
			p := probeRecord(rec, cfg, nil)
			return p.value, p.ok
		}
		return transform.ToNumber(item)
	}
	cur, okCur := point(arr[len(arr)-1])
	prev, okPrev := point(arr[len(arr)-2])
	if !okCur || !okPrev {
		return nil, false
	}
	return map[string]any{"current": cur, "previous": prev}, true
}
