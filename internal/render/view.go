package render

import "github.com/GregMSThompson/widget-dashboard/internal/models"

const (
	TierHigh   = "high"
	TierMedium = "medium"
	TierLow    = "low"
)

const (
	DirectionUp   = "up"
	DirectionDown = "down"
	DirectionFlat = "flat"
)

// View is a renderable description of one widget. Type names the variant and
// exactly one of the variant fields is set, unless Placeholder explains why
// nothing could be shown.
type View struct {
	Type        models.DisplayType `json:"type"`
	Title       string             `json:"title,omitempty"`
	Styling     models.Styling     `json:"styling"`
	Placeholder string             `json:"placeholder,omitempty"`

	Table     *TableView     `json:"table,omitempty"`
	Chart     *ChartView     `json:"chart,omitempty"`
	Metric    *MetricView    `json:"metric,omitempty"`
	Statistic *StatisticView `json:"statistic,omitempty"`
	Percent   *PercentView   `json:"percent,omitempty"`
	Trend     *TrendView     `json:"trend,omitempty"`
	List      *ListView      `json:"list,omitempty"`
	Query     *QueryView     `json:"query,omitempty"`
	Cards     *CardsView     `json:"cards,omitempty"`
	Summary   *SummaryView   `json:"summary,omitempty"`
}

type TableView struct {
	Columns   []string         `json:"columns"`
	Rows      []map[string]any `json:"rows"`
	Total     int              `json:"total"`
	Remaining int              `json:"remaining"`
}

type ChartView struct {
	ChartType models.ChartType `json:"chartType"`
	LabelKey  string           `json:"labelKey"`
	ValueKey  string           `json:"valueKey"`
	Series    []map[string]any `json:"series"`
}

// MetricView backs the metric and number variants.
type MetricView struct {
	Value     float64  `json:"value"`
	Label     string   `json:"label"`
	Field     string   `json:"field,omitempty"`
	Available bool     `json:"available"`
	Change    *float64 `json:"change,omitempty"`
}

type Stat struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type StatisticView struct {
	MetricView
	Stats []Stat `json:"stats,omitempty"`
}

// PercentView backs the percentage, gauge and progress variants.
type PercentView struct {
	Value     float64  `json:"value"`
	Max       float64  `json:"max,omitempty"`
	Percent   float64  `json:"percent"`
	Display   string   `json:"display"`
	Tier      string   `json:"tier"`
	Label     string   `json:"label"`
	Available bool     `json:"available"`
	Change    *float64 `json:"change,omitempty"`
}

type TrendView struct {
	Current   float64 `json:"current"`
	Previous  float64 `json:"previous"`
	Change    float64 `json:"change"`
	Direction string  `json:"direction"`
	Label     string  `json:"label"`
	Available bool    `json:"available"`
}

type ListItem struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

type ListView struct {
	Items []ListItem `json:"items"`
}

type QueryView struct {
	JSON    string `json:"json"`
	IsArray bool   `json:"isArray"`
	Records int    `json:"records,omitempty"`
	Fields  int    `json:"fields,omitempty"`
}

type Field struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value any    `json:"value"`
}

type CardsView struct {
	Fields []Field `json:"fields"`
}

type SummaryView struct {
	Fields []Field `json:"fields"`
}
