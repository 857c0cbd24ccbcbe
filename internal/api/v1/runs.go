package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Leo-Zh9/bridgette/internal/store"
)

// ListRuns 列出最近的对账运行记录
// GET /api/runs?limit=20
func (h *Handler) ListRuns(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}

	runs, err := h.store.ListRuns(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询运行记录失败"})
		return
	}
	if runs == nil {
		runs = []store.RunRecord{}
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// GetRun 按 id 查询运行记录
// GET /api/runs/:id
func (h *Handler) GetRun(c *gin.Context) {
	id := c.Param("id")

	run, err := h.store.GetRun(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询运行记录失败"})
		return
	}
	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "运行记录不存在"})
		return
	}

	c.JSON(http.StatusOK, run)
}
