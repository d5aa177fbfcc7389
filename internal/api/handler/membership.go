package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/biznet/bn_server/internal/api/middleware"
	"github.com/biznet/bn_server/internal/model/dto"
	"github.com/biznet/bn_server/internal/pkg/response"
	"github.com/biznet/bn_server/internal/service"
)

type MembershipHandler struct {
	membershipService *service.MembershipService
}

func NewMembershipHandler(membershipService *service.MembershipService) *MembershipHandler {
	return &MembershipHandler{
		membershipService: membershipService,
	}
}

// Purchase starts or upgrades a membership.
// POST /api/v1/membership/purchase
func (h *MembershipHandler) Purchase(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	membership, err := h.membershipService.Purchase(userID, &req)
	if err != nil {
		var mismatch *service.AmountMismatchError
		switch {
		case errors.As(err, &mismatch):
			response.ValidationErrorWithDetail(c, mismatch.Error(), gin.H{
				"expected_amount": mismatch.Expected,
			})
		case errors.Is(err, service.ErrInvalidTier),
			errors.Is(err, service.ErrInvalidPayment),
			errors.Is(err, service.ErrInvalidUpgradePath):
			response.ValidationError(c, err.Error())
		case errors.Is(err, service.ErrNoActiveMembership):
			response.ConflictError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Created(c, "membership activated", gin.H{"membership": membership})
}

// Verify reports whether the caller holds an active membership.
// GET /api/v1/membership/verify
func (h *MembershipHandler) Verify(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	result, err := h.membershipService.Verify(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	payload := gin.H{"has_active_membership": result.HasActiveMembership}
	if result.Membership != nil {
		payload["membership"] = result.Membership
	}
	response.Success(c, "membership verified", payload)
}

// VerifyByID is the public third-party lookup.
// POST /api/v1/membership/verify-id
func (h *MembershipHandler) VerifyByID(c *gin.Context) {
	var req dto.VerifyIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	result, err := h.membershipService.VerifyByID(req.MembershipID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	payload := gin.H{"is_valid": result.HasActiveMembership}
	if result.Membership != nil {
		payload["membership"] = result.Membership
	}
	response.Success(c, "membership id checked", payload)
}

// History returns the caller's full ledger.
// GET /api/v1/membership/history
func (h *MembershipHandler) History(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	items, err := h.membershipService.History(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, "membership history", gin.H{"memberships": items})
}

// Details returns the caller's current record regardless of status.
// GET /api/v1/membership/details
func (h *MembershipHandler) Details(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	membership, err := h.membershipService.Details(userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoMembership):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, "membership details", gin.H{"membership": membership})
}

// Cancel cancels the caller's membership.
// POST /api/v1/membership/cancel
func (h *MembershipHandler) Cancel(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		response.ValidationError(c, err.Error())
		return
	}

	membership, err := h.membershipService.Cancel(userID, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoMembership):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrAlreadyCancelled):
			response.ConflictError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, "membership cancelled", gin.H{"membership": membership})
}

// Downgrade moves the caller to the Basic tier in place.
// POST /api/v1/membership/downgrade
func (h *MembershipHandler) Downgrade(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.DowngradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	membership, err := h.membershipService.Downgrade(userID, req.Tier)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDowngradeTarget):
			response.ValidationError(c, err.Error())
		case errors.Is(err, service.ErrNoMembership):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrAlreadyBasic):
			response.ConflictError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, "membership downgraded", gin.H{"membership": membership})
}
