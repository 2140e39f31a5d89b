package storage

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const defaultHistoryLimit = 20

// HistoryHandler serves the recorded match results. Mounted only when a
// database is configured.
type HistoryHandler struct {
	repo *PostgresRepo
}

func NewHistoryHandler(repo *PostgresRepo) *HistoryHandler {
	return &HistoryHandler{repo: repo}
}

func (h *HistoryHandler) Register(router gin.IRouter) {
	router.GET("/api/history", h.ListHistoryHandler)
}

func (h *HistoryHandler) ListHistoryHandler(ctx *gin.Context) {
	limit := defaultHistoryLimit
	if raw := ctx.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid-limit"})
			return
		}
		limit = parsed
	}

	results, err := h.repo.RecentMatchResults(ctx.Request.Context(), ctx.Query("roomId"), limit)
	if err != nil {
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": results})
}
