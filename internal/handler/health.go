package handler

import (
	"net/http"

	"github.com/ftechnology/backend/internal/db"
	"github.com/ftechnology/backend/internal/model"
	"github.com/gin-gonic/gin"
)

// Health godoc
// @Summary Liveness and database check
// @Tags health
// @Produce json
// @Success 200 {object} model.HealthResponse
// @Failure 503 {object} model.HealthResponse
// @Router /health [get]
func Health(pg *db.Postgres) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := pg.Pool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, model.HealthResponse{
				Status:   "degraded",
				Database: "unreachable",
			})
			return
		}
		c.JSON(http.StatusOK, model.HealthResponse{
			Status:   "ok",
			Database: "connected",
		})
	}
}
