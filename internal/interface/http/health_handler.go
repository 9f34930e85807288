package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/users-api/internal/domain/repository"
	"github.com/oksasatya/users-api/pkg/response"
)

type HealthHandler struct {
	Store repository.Pinger
}

func NewHealthHandler(store repository.Pinger) *HealthHandler {
	return &HealthHandler{Store: store}
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		response.Error(c, http.StatusServiceUnavailable, "store unavailable", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "ok"})
}
