package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/biznet/bn_server/internal/api/middleware"
	"github.com/biznet/bn_server/internal/pkg/response"
	"github.com/biznet/bn_server/internal/service"
)

type ReportHandler struct {
	reportService *service.ReportService
}

func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// UsersByTier lists users grouped with their memberships, filtered by
// current tier ("all" disables the filter).
// GET /api/v1/membership-tiers/:tierId/users
func (h *ReportHandler) UsersByTier(c *gin.Context) {
	views, err := h.reportService.ListUsersByTier(c.Param("tierId"))
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, "users by tier", gin.H{"users": views})
}

// MyStats aggregates the caller's membership ledger.
// GET /api/v1/membership/stats
func (h *ReportHandler) MyStats(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	stats, err := h.reportService.StatsForUser(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, "membership stats", gin.H{"stats": stats})
}
