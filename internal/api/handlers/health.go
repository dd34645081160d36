package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/myproject/website/internal/health"
)

type HealthHandler struct {
	checker *health.HealthChecker
}

func NewHealthHandler(checker *health.HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// HandleHealth always answers 200; dependency state is in the body.
func (h *HealthHandler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, h.checker.Check(c.Request.Context()))
}
