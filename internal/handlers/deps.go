package handlers

import (
	"log/slog"

	"github.com/GregMSThompson/widget-dashboard/internal/middleware"
	"github.com/GregMSThompson/widget-dashboard/internal/response"
)

type Deps struct {
	Log             *slog.Logger
	ResponseHandler response.ResponseHandler
	DashboardSvc    DashboardService
	InstanceSvc     InstanceService
	Firebase        middleware.TokenVerifier
}
