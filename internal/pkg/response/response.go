package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Success writes a 200 with {"message": ..., <payload keys>...} so handlers
// can return bodies like {"message", "membership"} without nesting.
func Success(c *gin.Context, message string, payload gin.H) {
	c.JSON(http.StatusOK, body(message, payload))
}

// Created writes a 201, otherwise identical to Success.
func Created(c *gin.Context, message string, payload gin.H) {
	c.JSON(http.StatusCreated, body(message, payload))
}

// ValidationError reports bad or missing input.
func ValidationError(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"message": message})
}

// ValidationErrorWithDetail reports bad input with extra context, e.g. the
// expected payment amount on an upgrade mismatch.
func ValidationErrorWithDetail(c *gin.Context, message string, detail gin.H) {
	c.JSON(http.StatusBadRequest, gin.H{"message": message, "error": detail})
}

// ConflictError reports a business-rule conflict (already cancelled, already
// Basic, invalid upgrade path). Conflicts surface as 400 on this API.
func ConflictError(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"message": message})
}

func AuthError(c *gin.Context, message string) {
	if message == "" {
		message = "authentication required"
	}
	c.JSON(http.StatusUnauthorized, gin.H{"message": message})
}

func PermissionError(c *gin.Context, message string) {
	if message == "" {
		message = "permission denied"
	}
	c.JSON(http.StatusForbidden, gin.H{"message": message})
}

func NotFoundError(c *gin.Context, message string) {
	if message == "" {
		message = "resource not found"
	}
	c.JSON(http.StatusNotFound, gin.H{"message": message})
}

// ServerError hides internals behind a generic message.
func ServerError(c *gin.Context, message string) {
	if message == "" {
		message = "internal server error"
	}
	c.JSON(http.StatusInternalServerError, gin.H{"message": message})
}

func body(message string, payload gin.H) gin.H {
	out := gin.H{"message": message}
	for k, v := range payload {
		out[k] = v
	}
	return out
}
