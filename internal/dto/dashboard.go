package dto

import (
	"time"

	"github.com/GregMSThompson/widget-dashboard/internal/models"
	"github.com/GregMSThompson/widget-dashboard/internal/refresh"
	"github.com/GregMSThompson/widget-dashboard/internal/render"
)

// --- Request types ---

type CreateWidgetRequest struct {
	Config models.WidgetConfig `json:"config"`
}

type UpdateWidgetConfigRequest struct {
	Config models.WidgetConfig `json:"config"`
}

type ReorderWidgetItem struct {
	WidgetID string `json:"widgetId"`
	Position int    `json:"position"`
}

type ReorderWidgetsRequest struct {
	WidgetOrder []ReorderWidgetItem `json:"widgetOrder"`
}

// PageContext is where the widget is being shown: the navigation path and
// the entity the page is about.
type PageContext struct {
	Path   string                `json:"path,omitempty"`
	Entity *models.EntityContext `json:"entity,omitempty"`
}

// PreviewWidgetRequest renders an unsaved configuration. When Data is set it
// is rendered as-is and the plugin is never called.
type PreviewWidgetRequest struct {
	Config models.WidgetConfig `json:"config"`
	PageContext
	Data any `json:"data,omitempty"`
}

type MountWidgetRequest struct {
	PageContext
}

// --- Response types ---

type WidgetDataResponse struct {
	WidgetID    string      `json:"widgetId,omitempty"`
	Data        any         `json:"data"`
	View        render.View `json:"view"`
	LastUpdated time.Time   `json:"lastUpdated"`
}

type InstanceResponse struct {
	InstanceID string             `json:"instanceId"`
	WidgetID   string             `json:"widgetId"`
	State      refresh.FetchState `json:"state"`
	View       render.View        `json:"view"`
}

type RefreshAllResponse struct {
	Refreshed int `json:"refreshed"`
}
