package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/biznet/bn_server/internal/model/dto"
	"github.com/biznet/bn_server/internal/pkg/response"
	"github.com/biznet/bn_server/internal/service"
)

type TierHandler struct {
	catalogService *service.CatalogService
}

func NewTierHandler(catalogService *service.CatalogService) *TierHandler {
	return &TierHandler{
		catalogService: catalogService,
	}
}

// List returns the tier catalog.
// GET /api/v1/membership-tiers
func (h *TierHandler) List(c *gin.Context) {
	tiers, err := h.catalogService.ListTiers()
	if err != nil {
		response.ServerError(c, "")
		return
	}

	c.JSON(http.StatusOK, tiers)
}

// UpdateFeatures replaces a tier's feature list (admin).
// PUT /api/v1/membership-tiers/:tierId
func (h *TierHandler) UpdateFeatures(c *gin.Context) {
	var req dto.UpdateFeaturesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	tier, err := h.catalogService.UpdateFeatures(c.Param("tierId"), req.Features)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTierNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrInvalidFeature):
			response.ValidationError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, "tier features updated", gin.H{"tier": tier})
}
