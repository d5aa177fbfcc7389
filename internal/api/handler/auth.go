package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/biznet/bn_server/internal/model/dto"
	"github.com/biznet/bn_server/internal/pkg/response"
	"github.com/biznet/bn_server/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register creates an account.
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	result, err := h.authService.Register(&req)
	if err != nil {
		switch err {
		case service.ErrEmailTaken, service.ErrUsernameTaken, service.ErrInvalidReferralCode:
			response.ValidationError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Created(c, "account created", gin.H{"auth": result})
}

// Login issues a token.
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	result, err := h.authService.Login(&req)
	if err != nil {
		switch err {
		case service.ErrInvalidCredentials:
			response.AuthError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, "logged in", gin.H{"auth": result})
}
