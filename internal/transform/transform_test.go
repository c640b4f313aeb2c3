package transform

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/GregMSThompson/widget-dashboard/internal/models"
)

func TestToNumber(t *testing.T) {
	cases := []struct {
		in   any
		want float64
		ok   bool
	}{
		{3.5, 3.5, true},
		{7, 7, true},
		{int64(-2), -2, true},
		{"42", 42, true},
		{" 1.5 ", 1.5, true},
		{"x", 0, false},
		{"", 0, false},
		{nil, 0, false},
		{true, 0, false},
		{math.NaN(), 0, false},
		{math.Inf(1), 0, false},
		{"Inf", 0, false},
	}
	for _, tc := range cases {
		got, ok := ToNumber(tc.in)
		assert.Equal(t, tc.ok, ok, "%v", tc.in)
		assert.Equal(t, tc.want, got, "%v", tc.in)
	}
}

func TestGroupAverageSortedDescending(t *testing.T) {
	records := []any{
		map[string]any{"k": "a", "v": 1.0},
		map[string]any{"k": "a", "v": 3.0},
		map[string]any{"k": "b", "v": 5.0},
	}

	out := Group(records, models.GroupBy{Field: "k", ValueField: "v", AggregationFunction: models.AggAvg})

	require.Len(t, out, 2)
	assert.Equal(t, map[string]any{"k": "b", "name": "b", "value": 5.0, "v": 5.0, "count": 1}, out[0])
	assert.Equal(t, map[string]any{"k": "a", "name": "a", "value": 2.0, "v": 2.0, "count": 2}, out[1])
}

func TestGroupSumSkipsNonNumeric(t *testing.T) {
	records := []any{
		map[string]any{"k": "a", "v": 1.0},
		map[string]any{"k": "a", "v": "x"},
		map[string]any{"k": "a", "v": 3.0},
	}

	out := Group(records, models.GroupBy{Field: "k", ValueField: "v", AggregationFunction: models.AggSum})

	require.Len(t, out, 1)
	assert.Equal(t, 4.0, out[0]["value"])
	assert.Equal(t, 3, out[0]["count"])
}

func TestGroupFunctions(t *testing.T) {
	records := []any{
		map[string]any{"team": "ops", "hours": "4"},
		map[string]any{"team": "ops", "hours": 10.0},
		map[string]any{"team": "ops", "hours": nil},
	}
	want := map[models.AggregationFunction]float64{
		models.AggCount: 3,
		models.AggSum:   14,
		models.AggAvg:   7,
		models.AggMin:   4,
		models.AggMax:   10,
	}
	for fn, expected := range want {
		out := Group(records, models.GroupBy{Field: "team", ValueField: "hours", AggregationFunction: fn})
		require.Len(t, out, 1, string(fn))
		assert.Equal(t, expected, out[0]["value"], string(fn))
	}
}

func TestGroupWithoutValueFieldCounts(t *testing.T) {
	records := []any{
		map[string]any{"status": "open"},
		map[string]any{"status": "open"},
		map[string]any{"status": "closed"},
		map[string]any{"other": 1.0},
		"not a record",
	}

	out := Group(records, models.GroupBy{Field: "status", AggregationFunction: models.AggSum, SortBy: models.SortAsc})

	require.Len(t, out, 3)
	assert.Equal(t, "closed", out[0]["name"])
	assert.Equal(t, 1.0, out[0]["value"])
	// "open" and "Unknown" tie at 2; the stable sort keeps first-seen order.
	assert.Equal(t, "open", out[1]["name"])
	assert.Equal(t, "Unknown", out[2]["name"])
	assert.Equal(t, 2.0, out[2]["value"])
	assert.Equal(t, 2, out[2]["count"])
}

func TestGroupLimit(t *testing.T) {
	records := []any{}
	for i, n := range []int{3, 9, 1, 7, 5} {
		for j := 0; j < n; j++ {
			records = append(records, map[string]any{"k": fmt.Sprintf("g%d", i)})
		}
	}

	out := Group(records, models.GroupBy{Field: "k", Limit: 2})

	require.Len(t, out, 2)
	assert.Equal(t, "g1", out[0]["name"])
	assert.Equal(t, "g3", out[1]["name"])
}

func TestGroupDefaultLimit(t *testing.T) {
	records := []any{}
	for i := 0; i < 15; i++ {
		records = append(records, map[string]any{"k": fmt.Sprint(i)})
	}
	assert.Len(t, Group(records, models.GroupBy{Field: "k"}), 10)
}

// Sum never produces NaN whatever mix of values a group holds, and equals
// the sum of the values that coerce.
func TestGroupSumProperty(t *testing.T) {
	value := rapid.OneOf(
		rapid.Float64Range(-1e6, 1e6).AsAny(),
		rapid.IntRange(-1000, 1000).AsAny(),
		rapid.StringMatching(`[a-z]{0,4}`).AsAny(),
		rapid.Just[any](nil),
		rapid.Bool().AsAny(),
	)
	rapid.Check(t, func(t *rapid.T) {
		values := rapid.SliceOfN(value, 1, 30).Draw(t, "values")

		records := make([]any, len(values))
		var want float64
		for i, v := range values {
			records[i] = map[string]any{"k": "g", "v": v}
			if n, ok := ToNumber(v); ok {
				want += n
			}
		}

		out := Group(records, models.GroupBy{Field: "k", ValueField: "v", AggregationFunction: models.AggSum})
		got := out[0]["value"].(float64)
		require.False(t, math.IsNaN(got))
		require.InDelta(t, want, got, 1e-6)
	})
}

func TestSeries(t *testing.T) {
	assert.Equal(t, []map[string]any{
		{"name": "Item 1", "value": 4.0},
		{"name": "x", "value": 1.0},
	}, Series([]any{4.0, map[string]any{"name": "x", "value": 1.0}}))

	assert.Equal(t, []map[string]any{
		{"name": "closed", "value": 2.0},
		{"name": "open", "value": 5.0},
	}, Series(map[string]any{"open": 5.0, "closed": 2.0}))

	assert.Nil(t, Series(12.0))
}

func TestSelectFields(t *testing.T) {
	rec := map[string]any{"id": 1.0, "title": "Outage", "owner": nil, "notes": ""}

	assert.Equal(t, rec, SelectFields(rec, nil))
	assert.Equal(t, rec, SelectFields(rec, &models.FieldSelection{SelectedFields: []string{"id"}}))

	assert.Equal(t,
		map[string]any{"title": "Outage", "owner": nil, "missing": nil},
		SelectFields(rec, &models.FieldSelection{Enabled: true, SelectedFields: []string{"title", "owner", "missing"}}),
	)
	assert.Equal(t,
		map[string]any{"title": "Outage"},
		SelectFields(rec, &models.FieldSelection{Enabled: true, SelectedFields: []string{"title", "owner", "missing"}, ExcludeNullFields: true}),
	)
	assert.Equal(t,
		map[string]any{"id": 1.0, "title": "Outage"},
		SelectFields(rec, &models.FieldSelection{Enabled: true, ExcludeNullFields: true}),
	)
	assert.Len(t, rec, 4)
}

func TestHumanizeKey(t *testing.T) {
	assert.Equal(t, "Open Ticket Count", HumanizeKey("openTicketCount"))
	assert.Equal(t, "Open Ticket Count", HumanizeKey("open_ticket_count"))
	assert.Equal(t, "Sla", HumanizeKey("sla"))
	assert.Equal(t, "", HumanizeKey(""))
}

func TestApply(t *testing.T) {
	rows := []any{
		map[string]any{"status": "open", "id": 1.0},
		map[string]any{"status": "open", "id": 2.0},
		map[string]any{"status": "closed", "id": 3.0},
	}

	table := models.WidgetConfig{DisplayType: models.DisplayTable, GroupBy: &models.GroupBy{Field: "status"}}
	assert.Equal(t, rows, Apply(table, rows))

	chart := models.WidgetConfig{DisplayType: models.DisplayChart, ChartType: models.ChartBar, GroupBy: &models.GroupBy{Field: "status"}}
	grouped := Apply(chart, rows).([]any)
	require.Len(t, grouped, 2)
	assert.Equal(t, "open", grouped[0].(map[string]any)["name"])

	cards := models.WidgetConfig{DisplayType: models.DisplayCards, FieldSelection: &models.FieldSelection{Enabled: true, SelectedFields: []string{"id"}}}
	selected := Apply(cards, rows).([]any)
	assert.Equal(t, map[string]any{"id": 3.0}, selected[2])
}
