package models

import "time"

type QueryType string

const (
	QueryTypeDefault QueryType = "default"
	QueryTypeCustom  QueryType = "custom"
)

type DisplayType string

const (
	DisplayTable      DisplayType = "table"
	DisplayChart      DisplayType = "chart"
	DisplayMetric     DisplayType = "metric"
	DisplayList       DisplayType = "list"
	DisplayGauge      DisplayType = "gauge"
	DisplayQuery      DisplayType = "query"
	DisplayNumber     DisplayType = "number"
	DisplayPercentage DisplayType = "percentage"
	DisplayProgress   DisplayType = "progress"
	DisplayTrend      DisplayType = "trend"
	DisplayStatistic  DisplayType = "statistic"
	DisplaySummary    DisplayType = "summary"
	DisplayCards      DisplayType = "cards"
)

// DisplayTypes lists every display variant the renderer must handle.
var DisplayTypes = []DisplayType{
	DisplayTable, DisplayChart, DisplayMetric, DisplayList, DisplayGauge,
	DisplayQuery, DisplayNumber, DisplayPercentage, DisplayProgress,
	DisplayTrend, DisplayStatistic, DisplaySummary, DisplayCards,
}

func (d DisplayType) Valid() bool {
	for _, v := range DisplayTypes {
		if v == d {
			return true
		}
	}
	return false
}

type ChartType string

const (
	ChartBar  ChartType = "bar"
	ChartLine ChartType = "line"
	ChartPie  ChartType = "pie"
	ChartArea ChartType = "area"
)

var ChartTypes = []ChartType{ChartBar, ChartLine, ChartPie, ChartArea}

func (c ChartType) Valid() bool {
	for _, v := range ChartTypes {
		if v == c {
			return true
		}
	}
	return false
}

type AggregationFunction string

const (
	AggCount AggregationFunction = "count"
	AggSum   AggregationFunction = "sum"
	AggAvg   AggregationFunction = "avg"
	AggMin   AggregationFunction = "min"
	AggMax   AggregationFunction = "max"
)

var AggregationFunctions = []AggregationFunction{AggCount, AggSum, AggAvg, AggMin, AggMax}

const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// Widget is a persisted dashboard widget.
type Widget struct {
	WidgetID  string       `firestore:"widgetId" json:"widgetId"`
	Position  int          `firestore:"position" json:"position"`
	Config    WidgetConfig `firestore:"config" json:"config"`
	CreatedAt time.Time    `firestore:"createdAt" json:"createdAt"`
	UpdatedAt time.Time    `firestore:"updatedAt" json:"updatedAt"`
}

// WidgetConfig describes what a widget queries and how it is presented.
// It is replaced wholesale on edit.
type WidgetConfig struct {
	ID          string `firestore:"id,omitempty" json:"id,omitempty" yaml:"id,omitempty"`
	Name        string `firestore:"name" json:"name" yaml:"name"`
	Description string `firestore:"description,omitempty" json:"description,omitempty" yaml:"description,omitempty"`

	PluginName string `firestore:"pluginName" json:"pluginName" yaml:"pluginName"`
	InstanceID string `firestore:"instanceId" json:"instanceId" yaml:"instanceId"`

	QueryType       QueryType      `firestore:"queryType" json:"queryType" yaml:"queryType"`
	QueryID         string         `firestore:"queryId,omitempty" json:"queryId,omitempty" yaml:"queryId,omitempty"`
	CustomQuery     string         `firestore:"customQuery,omitempty" json:"customQuery,omitempty" yaml:"customQuery,omitempty"`
	QueryMethod     string         `firestore:"queryMethod,omitempty" json:"queryMethod,omitempty" yaml:"queryMethod,omitempty"`
	QueryParameters map[string]any `firestore:"queryParameters,omitempty" json:"queryParameters,omitempty" yaml:"queryParameters,omitempty"`

	Filters        []Filter        `firestore:"filters,omitempty" json:"filters,omitempty" yaml:"filters,omitempty"`
	Aggregation    *Aggregation    `firestore:"aggregation,omitempty" json:"aggregation,omitempty" yaml:"aggregation,omitempty"`
	GroupBy        *GroupBy        `firestore:"groupBy,omitempty" json:"groupBy,omitempty" yaml:"groupBy,omitempty"`
	FieldSelection *FieldSelection `firestore:"fieldSelection,omitempty" json:"fieldSelection,omitempty" yaml:"fieldSelection,omitempty"`

	DisplayType DisplayType `firestore:"displayType" json:"displayType" yaml:"displayType"`
	ChartType   ChartType   `firestore:"chartType,omitempty" json:"chartType,omitempty" yaml:"chartType,omitempty"`
	// ValueField names the field metric-style variants read before falling back to probing.
	ValueField string `firestore:"valueField,omitempty" json:"valueField,omitempty" yaml:"valueField,omitempty"`

	RefreshInterval int     `firestore:"refreshInterval" json:"refreshInterval" yaml:"refreshInterval"` // seconds, 0 = off
	Styling         Styling `firestore:"styling" json:"styling" yaml:"styling"`
}

type Filter struct {
	Field    string `firestore:"field" json:"field" yaml:"field"`
	Operator string `firestore:"operator" json:"operator" yaml:"operator"`
	Value    any    `firestore:"value" json:"value" yaml:"value"`
}

type Aggregation struct {
	Function AggregationFunction `firestore:"function" json:"function" yaml:"function"`
	Field    string              `firestore:"field,omitempty" json:"field,omitempty" yaml:"field,omitempty"`
}

type GroupBy struct {
	Field               string              `firestore:"field" json:"field" yaml:"field"`
	ValueField          string              `firestore:"valueField,omitempty" json:"valueField,omitempty" yaml:"valueField,omitempty"`
	AggregationFunction AggregationFunction `firestore:"aggregationFunction" json:"aggregationFunction" yaml:"aggregationFunction"`
	Limit               int                 `firestore:"limit,omitempty" json:"limit,omitempty" yaml:"limit,omitempty"`
	SortBy              string              `firestore:"sortBy,omitempty" json:"sortBy,omitempty" yaml:"sortBy,omitempty"` // "asc" | "desc"
}

type FieldSelection struct {
	Enabled           bool     `firestore:"enabled" json:"enabled" yaml:"enabled"`
	SelectedFields    []string `firestore:"selectedFields,omitempty" json:"selectedFields,omitempty" yaml:"selectedFields,omitempty"`
	ExcludeNullFields bool     `firestore:"excludeNullFields" json:"excludeNullFields" yaml:"excludeNullFields"`
}

// Styling is presentation-only and passed through untouched.
type Styling struct {
	WidthClass  string `firestore:"widthClass,omitempty" json:"widthClass,omitempty" yaml:"widthClass,omitempty"`
	HeightClass string `firestore:"heightClass,omitempty" json:"heightClass,omitempty" yaml:"heightClass,omitempty"`
	ShowBorder  bool   `firestore:"showBorder" json:"showBorder" yaml:"showBorder"`
	ShowHeader  bool   `firestore:"showHeader" json:"showHeader" yaml:"showHeader"`
}

// RateLimitKey identifies the ledger entry shared by every instance of this widget.
func (c WidgetConfig) RateLimitKey() string {
	return c.PluginName + ":" + c.InstanceID + ":" + c.Name
}

// RefreshEvery returns the auto-refresh period, zero when disabled.
func (c WidgetConfig) RefreshEvery() time.Duration {
	if c.RefreshInterval <= 0 {
		return 0
	}
	return time.Duration(c.RefreshInterval) * time.Second
}
