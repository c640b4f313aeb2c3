// Package render maps transformed widget data to a renderable View. Every
// branch tolerates malformed data and degrades to a placeholder instead of
// failing.
package render

import (
	"fmt"

	"github.com/GregMSThompson/widget-dashboard/internal/models"
)

const (
	msgNoData        = "No data available"
	msgNotTable      = "Data is not in table format"
	msgUnsupported   = "Unsupported display type"
	msgRenderFailure = "Unable to display data"
)

// Render builds the view for displayType. It has no side effects and never panics.
func Render(displayType models.DisplayType, data any, cfg models.WidgetConfig) (view View) {
	view = View{Type: displayType, Title: cfg.Name, Styling: cfg.Styling}

	defer func() {
		if r := recover(); r != nil {
			view = View{
				Type:        displayType,
				Title:       cfg.Name,
				Styling:     cfg.Styling,
				Placeholder: fmt.Sprintf("%s: %v", msgRenderFailure, r),
			}
		}
	}()

	switch displayType {
	case models.DisplayTable:
		renderTable(&view, data)
	case models.DisplayChart:
		renderChart(&view, data, cfg)
	case models.DisplayMetric, models.DisplayNumber:
		renderMetric(&view, data, cfg)
	case models.DisplayStatistic:
		renderStatistic(&view, data, cfg)
	case models.DisplayPercentage:
		renderPercentage(&view, data, cfg)
	case models.DisplayGauge:
		renderGauge(&view, data, cfg)
	case models.DisplayProgress:
		renderProgress(&view, data, cfg)
	case models.DisplayTrend:
		renderTrend(&view, data, cfg)
	case models.DisplayList:
		renderList(&view, data)
	case models.DisplayQuery:
		renderQuery(&view, data)
	case models.DisplayCards:
		renderCards(&view, data, cfg)
	case models.DisplaySummary:
		renderSummary(&view, data)
	default:
		view.Placeholder = fmt.Sprintf("%s %q", msgUnsupported, displayType)
	}
	return view
}

// ColorTier buckets a gauge or progress percentage.
func ColorTier(percent float64) string {
	switch {
	case percent >= 80:
		return TierHigh
	case percent >= 50:
		return TierMedium
	default:
		return TierLow
	}
}

// PercentageTier buckets a percentage display value.
func PercentageTier(percent float64) string {
	switch {
	case percent >= 90:
		return TierHigh
	case percent >= 70:
		return TierMedium
	default:
		return TierLow
	}
}

// Change is the percentage change from previous to current. A zero previous
// value yields zero.
func Change(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}
