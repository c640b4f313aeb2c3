package transform

import (
	"fmt"
	"sort"

	"github.com/GregMSThompson/widget-dashboard/internal/models"
)

const defaultGroupLimit = 10

type group struct {
	key    string
	size   int
	values []float64
}

// Group partitions records by groupBy.Field and aggregates each partition
// into one chart-ready record. Values that do not coerce to a finite number
// are dropped from sum/avg/min/max rather than failing the aggregation.
func Group(records []any, gb models.GroupBy) []map[string]any {
	groups := map[string]*group{}
	order := []string{}

	for _, item := range records {
		rec, _ := AsRecord(item)
		key := "Unknown"
		if rec != nil {
			if v, ok := rec[gb.Field]; ok {
				key = KeyString(v)
			}
		}
		g, ok := groups[key]
		if !ok {
			g = &group{key: key}
			groups[key] = g
			order = append(order, key)
		}
		g.size++
		if gb.ValueField != "" && rec != nil {
			if n, ok := ToNumber(rec[gb.ValueField]); ok {
				g.values = append(g.values, n)
			}
		}
	}

	valueKey := gb.ValueField
	if valueKey == "" {
		valueKey = "value"
	}

	out := make([]map[string]any, 0, len(groups))
	for _, key := range order {
		g := groups[key]
		value := aggregate(g, gb)
		row := map[string]any{
			"name":  g.key,
			"value": value,
			"count": g.size,
		}
		row[valueKey] = value
		if gb.Field != "" {
			row[gb.Field] = g.key
		}
		out = append(out, row)
	}

	asc := gb.SortBy == models.SortAsc
	sort.SliceStable(out, func(i, j int) bool {
		vi, vj := out[i]["value"].(float64), out[j]["value"].(float64)
		if asc {
			return vi < vj
		}
		return vi > vj
	})

	limit := gb.Limit
	if limit <= 0 {
		limit = defaultGroupLimit
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func aggregate(g *group, gb models.GroupBy) float64 {
	fn := gb.AggregationFunction
	if gb.ValueField == "" {
		fn = models.AggCount
	}

	switch fn {
	case models.AggSum:
		return sum(g.values)
	case models.AggAvg:
		if len(g.values) == 0 {
			return 0
		}
		return sum(g.values) / float64(len(g.values))
	case models.AggMin:
		if len(g.values) == 0 {
			return 0
		}
		m := g.values[0]
		for _, v := range g.values[1:] {
			if v < m {
				m = v
			}
		}
		return m
	case models.AggMax:
		if len(g.values) == 0 {
			return 0
		}
		m := g.values[0]
		for _, v := range g.values[1:] {
			if v > m {
				m = v
			}
		}
		return m
	default:
		return float64(g.size)
	}
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

// Series coerces ungrouped data into name/value records: primitives become
// "Item N", objects pass through and a plain object becomes one entry per key.
func Series(data any) []map[string]any {
	if arr, ok := AsArray(data); ok {
		out := make([]map[string]any, 0, len(arr))
		for i, item := range arr {
			if rec, ok := AsRecord(item); ok {
				out = append(out, rec)
				continue
			}
			out = append(out, map[string]any{
				"name":  fmt.Sprintf("Item %d", i+1),
				"value": item,
			})
		}
		return out
	}
	if rec, ok := AsRecord(data); ok {
		out := make([]map[string]any, 0, len(rec))
		for _, k := range SortedKeys(rec) {
			out = append(out, map[string]any{"name": k, "value": rec[k]})
		}
		return out
	}
	return nil
}
