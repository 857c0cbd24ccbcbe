package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Leo-Zh9/bridgette/internal/oracle"
	"github.com/Leo-Zh9/bridgette/internal/store"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Initialized   bool             `json:"initialized"`    // 是否已有运行记录
	OracleEnabled bool             `json:"oracle_enabled"` // 对应关系服务是否已配置
	TotalRuns     int              `json:"total_runs"`     // 运行总数
	LastRun       *store.RunRecord `json:"last_run,omitempty"`
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	_, disabled := h.oracle.(oracle.DisabledClient)

	total, err := h.store.CountRuns()
	if err != nil {
		c.JSON(http.StatusOK, StatusResponse{
			Initialized:   false,
			OracleEnabled: !disabled,
		})
		return
	}

	runs, err := h.store.ListRuns(1)
	if err != nil {
		runs = nil
	}

	resp := StatusResponse{
		Initialized:   total > 0,
		OracleEnabled: !disabled,
		TotalRuns:     total,
	}
	if len(runs) > 0 {
		resp.LastRun = &runs[0]
	}

	c.JSON(http.StatusOK, resp)
}
