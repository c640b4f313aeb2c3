package render

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/GregMSThompson/widget-dashboard/internal/models"
)

func cfgFor(dt models.DisplayType) models.WidgetConfig {
	return models.WidgetConfig{Name: "Open tickets", DisplayType: dt, ChartType: models.ChartBar}
}

// Every display type has its own branch: a variant is set or a placeholder
// explains why not, and the unsupported message is never produced.
func TestRenderCoversEveryDisplayType(t *testing.T) {
	samples := []any{
		nil,
		12.0,
		"text",
		map[string]any{"value": 3.0, "max": 10.0},
		[]any{map[string]any{"name": "a", "value": 1.0}},
		[]any{1.0, "x", true},
		[]any{},
	}
	for _, dt := range models.DisplayTypes {
		for _, data := range samples {
			v := Render(dt, data, cfgFor(dt))
			assert.Equal(t, dt, v.Type)
			assert.NotContains(t, v.Placeholder, msgUnsupported, "%s", dt)
			assert.NotContains(t, v.Placeholder, msgRenderFailure, "%s %v", dt, data)
			assert.True(t, v.Placeholder != "" || hasVariant(v), "%s with %v produced an empty view", dt, data)
		}
	}
}

func hasVariant(v View) bool {
	return v.Table != nil || v.Chart != nil || v.Metric != nil || v.Statistic != nil ||
		v.Percent != nil || v.Trend != nil || v.List != nil || v.Query != nil ||
		v.Cards != nil || v.Summary != nil
}

func TestRenderUnknownDisplayType(t *testing.T) {
	v := Render("heatmap", []any{}, models.WidgetConfig{})
	assert.Contains(t, v.Placeholder, msgUnsupported)
}

// Arbitrary JSON-shaped data never panics any branch.
func TestRenderNeverPanicsProperty(t *testing.T) {
	leaf := rapid.OneOf(
		rapid.Float64().AsAny(),
		rapid.String().AsAny(),
		rapid.Bool().AsAny(),
		rapid.Just[any](nil),
	)
	record := rapid.MapOfN(rapid.SampledFrom([]string{"value", "max", "current", "previous", "count", "name", "average", "x"}), leaf, 0, 5).AsAny()
	data := rapid.OneOf(leaf, record, rapid.SliceOfN(rapid.OneOf(leaf, record), 0, 12).AsAny())

	rapid.Check(t, func(t *rapid.T) {
		dt := rapid.SampledFrom(models.DisplayTypes).Draw(t, "displayType")
		v := Render(dt, data.Draw(t, "data"), cfgFor(dt))
		require.NotContains(t, v.Placeholder, msgRenderFailure)
	})
}

func TestTableNonArray(t *testing.T) {
	v := Render(models.DisplayTable, map[string]any{"count": 3.0}, cfgFor(models.DisplayTable))
	assert.Equal(t, msgNotTable, v.Placeholder)
	assert.Nil(t, v.Table)
}

func TestTableTruncates(t *testing.T) {
	rows := make([]any, 13)
	for i := range rows {
		rows[i] = map[string]any{"id": float64(i), "title": "t"}
	}

	v := Render(models.DisplayTable, rows, cfgFor(models.DisplayTable))

	require.NotNil(t, v.Table)
	assert.Len(t, v.Table.Rows, 10)
	assert.Equal(t, 13, v.Table.Total)
	assert.Equal(t, 3, v.Table.Remaining)
	assert.Equal(t, []string{"id", "title"}, v.Table.Columns)
}

func TestChartFallsBackToTable(t *testing.T) {
	cfg := cfgFor(models.DisplayChart)
	cfg.ChartType = ""

	v := Render(models.DisplayChart, []any{map[string]any{"name": "a", "value": 1.0}}, cfg)

	assert.Nil(t, v.Chart)
	require.NotNil(t, v.Table)
	assert.Equal(t, 1, v.Table.Total)
}

func TestChartSeries(t *testing.T) {
	cfg := cfgFor(models.DisplayChart)
	cfg.ChartType = models.ChartPie

	v := Render(models.DisplayChart, map[string]any{"open": 5.0, "closed": 2.0}, cfg)

	require.NotNil(t, v.Chart)
	assert.Equal(t, models.ChartPie, v.Chart.ChartType)
	assert.Equal(t, "closed", v.Chart.Series[0]["name"])
	assert.Equal(t, "value", v.Chart.ValueKey)
}

func TestMetricProbing(t *testing.T) {
	cfg := cfgFor(models.DisplayMetric)

	v := Render(models.DisplayMetric, map[string]any{"total": 9.0, "count": 4.0}, cfg)
	assert.Equal(t, 4.0, v.Metric.Value)
	assert.Equal(t, "Count", v.Metric.Label)

	v = Render(models.DisplayMetric, map[string]any{"zeta": 1.0, "alpha": 2.0, "id": "77"}, cfg)
	assert.Equal(t, 2.0, v.Metric.Value)
	assert.Equal(t, "alpha", v.Metric.Field)

	cfg.ValueField = "zeta"
	v = Render(models.DisplayMetric, map[string]any{"zeta": 1.0, "value": 2.0}, cfg)
	assert.Equal(t, 1.0, v.Metric.Value)

	v = Render(models.DisplayMetric, "n/a", cfgFor(models.DisplayMetric))
	assert.False(t, v.Metric.Available)
	assert.Zero(t, v.Metric.Value)
	assert.Equal(t, "Open tickets", v.Metric.Label)

	v = Render(models.DisplayMetric, []any{"a", "b", "c"}, cfgFor(models.DisplayMetric))
	assert.Equal(t, 3.0, v.Metric.Value)
}

func TestNumberChange(t *testing.T) {
	v := Render(models.DisplayNumber, map[string]any{"value": 12.0, "baseline": 8.0}, cfgFor(models.DisplayNumber))
	require.NotNil(t, v.Metric.Change)
	assert.Equal(t, 50.0, *v.Metric.Change)
}

func TestStatistic(t *testing.T) {
	v := Render(models.DisplayStatistic, map[string]any{"value": 10.0, "min": 1.0, "max": 30.0}, cfgFor(models.DisplayStatistic))
	require.NotNil(t, v.Statistic)
	assert.Equal(t, 10.0, v.Statistic.Value)
	assert.Equal(t, []Stat{{Label: "Max", Value: 30}, {Label: "Min", Value: 1}}, v.Statistic.Stats)

	v = Render(models.DisplayStatistic, []any{2.0, 4.0, "x"}, cfgFor(models.DisplayStatistic))
	assert.Equal(t, 3.0, v.Statistic.Value)
	assert.Equal(t, Stat{Label: "Average", Value: 3}, v.Statistic.Stats[1])
}

func TestGauge(t *testing.T) {
	v := Render(models.DisplayGauge, map[string]any{"value": 85.0, "max": 100.0}, cfgFor(models.DisplayGauge))

	require.NotNil(t, v.Percent)
	assert.Equal(t, 85.0, v.Percent.Percent)
	assert.Equal(t, TierHigh, v.Percent.Tier)
	assert.Equal(t, "85%", v.Percent.Display)
}

func TestGaugeClamps(t *testing.T) {
	v := Render(models.DisplayGauge, map[string]any{"value": 150.0, "max": 100.0}, cfgFor(models.DisplayGauge))
	assert.Equal(t, 100.0, v.Percent.Percent)

	v = Render(models.DisplayGauge, -5.0, cfgFor(models.DisplayGauge))
	assert.Equal(t, 0.0, v.Percent.Percent)
	assert.Equal(t, TierLow, v.Percent.Tier)

	v = Render(models.DisplayGauge, map[string]any{"percentage": 55.0}, cfgFor(models.DisplayGauge))
	assert.Equal(t, 55.0, v.Percent.Percent)
	assert.Equal(t, TierMedium, v.Percent.Tier)

	v = Render(models.DisplayGauge, []any{1.0, 2.0, 3.0}, cfgFor(models.DisplayGauge))
	assert.Equal(t, 3.0, v.Percent.Percent)
}

func TestProgress(t *testing.T) {
	v := Render(models.DisplayProgress, map[string]any{"completed": 30.0, "total": 40.0}, cfgFor(models.DisplayProgress))
	assert.Equal(t, 75.0, v.Percent.Percent)
	assert.Equal(t, TierMedium, v.Percent.Tier)
}

func TestPercentageAverage(t *testing.T) {
	cfg := cfgFor(models.DisplayPercentage)
	cfg.Aggregation = &models.Aggregation{Function: models.AggAvg}

	v := Render(models.DisplayPercentage, map[string]any{"average": 72.4}, cfg)

	require.NotNil(t, v.Percent)
	assert.Equal(t, 72.0, v.Percent.Value)
	assert.Equal(t, "72%", v.Percent.Display)
	assert.Equal(t, TierMedium, v.Percent.Tier)
}

func TestTiers(t *testing.T) {
	assert.Equal(t, TierHigh, ColorTier(80))
	assert.Equal(t, TierMedium, ColorTier(79.9))
	assert.Equal(t, TierMedium, ColorTier(50))
	assert.Equal(t, TierLow, ColorTier(49))

	assert.Equal(t, TierHigh, PercentageTier(90))
	assert.Equal(t, TierMedium, PercentageTier(70))
	assert.Equal(t, TierLow, PercentageTier(69))
}

func TestTrendZeroPrevious(t *testing.T) {
	v := Render(models.DisplayTrend, map[string]any{"current": 10.0, "previous": 0.0}, cfgFor(models.DisplayTrend))

	require.NotNil(t, v.Trend)
	assert.Equal(t, 0.0, v.Trend.Change)
	assert.Equal(t, DirectionFlat, v.Trend.Direction)
	assert.Equal(t, 10.0, v.Trend.Current)
}

func TestTrend(t *testing.T) {
	v := Render(models.DisplayTrend, map[string]any{"current": 15.0, "previous": 20.0}, cfgFor(models.DisplayTrend))
	assert.Equal(t, -25.0, v.Trend.Change)
	assert.Equal(t, DirectionDown, v.Trend.Direction)

	v = Render(models.DisplayTrend, []any{map[string]any{"value": 4.0}, map[string]any{"value": 5.0}}, cfgFor(models.DisplayTrend))
	assert.Equal(t, 25.0, v.Trend.Change)
	assert.Equal(t, DirectionUp, v.Trend.Direction)

	v = Render(models.DisplayTrend, map[string]any{"value": 5.0, "change": 3.5}, cfgFor(models.DisplayTrend))
	assert.Equal(t, 3.5, v.Trend.Change)
}

func TestChangeNeverInfinite(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cur := rapid.IntRange(-1e6, 1e6).Draw(t, "current")
		prev := rapid.IntRange(-1e6, 1e6).Draw(t, "previous")
		c := Change(float64(cur), float64(prev))
		if prev == 0 {
			require.Zero(t, c)
		}
		require.False(t, math.IsInf(c, 0))
		require.False(t, math.IsNaN(c))
	})
}

func TestList(t *testing.T) {
	v := Render(models.DisplayList, map[string]any{"b": 2.0, "a": 1.0}, cfgFor(models.DisplayList))
	assert.Equal(t, []ListItem{{Key: "a", Value: 1.0}, {Key: "b", Value: 2.0}}, v.List.Items)

	v = Render(models.DisplayList, 7.0, cfgFor(models.DisplayList))
	assert.Equal(t, []ListItem{{Key: "Open tickets", Value: 7.0}}, v.List.Items)

	v = Render(models.DisplayList, []any{map[string]any{"name": "ops", "value": 3.0}, "raw"}, cfgFor(models.DisplayList))
	assert.Equal(t, []ListItem{{Key: "ops", Value: 3.0}, {Key: "Item 2", Value: "raw"}}, v.List.Items)
}

func TestQuery(t *testing.T) {
	v := Render(models.DisplayQuery, []any{map[string]any{"a": 1.0, "b": 2.0}}, cfgFor(models.DisplayQuery))

	require.NotNil(t, v.Query)
	assert.True(t, v.Query.IsArray)
	assert.Equal(t, 1, v.Query.Records)
	assert.Equal(t, 2, v.Query.Fields)
	assert.Contains(t, v.Query.JSON, "\n  {")
}

func TestCards(t *testing.T) {
	cfg := cfgFor(models.DisplayCards)
	cfg.FieldSelection = &models.FieldSelection{Enabled: true, SelectedFields: []string{"title", "owner", "id"}, ExcludeNullFields: true}

	v := Render(models.DisplayCards, []any{map[string]any{"id": 1.0, "title": "Outage", "owner": nil, "notes": "x"}}, cfg)

	require.NotNil(t, v.Cards)
	assert.Equal(t, []Field{
		{Key: "title", Label: "Title", Value: "Outage"},
		{Key: "id", Label: "Id", Value: 1.0},
	}, v.Cards.Fields)
}

func TestSummary(t *testing.T) {
	v := Render(models.DisplaySummary, []any{map[string]any{"a": 1.0}}, cfgFor(models.DisplaySummary))
	assert.Equal(t, []Field{
		{Key: "fields", Label: "Fields", Value: 1},
		{Key: "records", Label: "Records", Value: 1},
		{Key: "type", Label: "Type", Value: "array"},
	}, v.Summary.Fields)

	v = Render(models.DisplaySummary, map[string]any{"openCount": 3.0}, cfgFor(models.DisplaySummary))
	assert.Equal(t, []Field{{Key: "openCount", Label: "Open Count", Value: 3.0}}, v.Summary.Fields)
}
