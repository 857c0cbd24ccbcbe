package v1

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/Leo-Zh9/bridgette/internal/config"
	"github.com/Leo-Zh9/bridgette/internal/pipeline"
)

// ReconcileRequest 对账请求
type ReconcileRequest struct {
	Bank1File string `json:"bank1_file" binding:"required"` // Bank 1 模式导出文件名
	Bank2File string `json:"bank2_file" binding:"required"` // Bank 2 模式导出文件名
}

// Reconcile 执行完整对账流水线 (SSE 流式响应)
// POST /api/reconcile
func (h *Handler) Reconcile(c *gin.Context) {
	var req ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求参数"})
		return
	}

	bank1Dir := config.UploadDir(h.dataDir, "bank1")
	bank2Dir := config.UploadDir(h.dataDir, "bank2")

	// 设置 SSE 响应头
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "不支持流式响应"})
		return
	}

	coordinator := pipeline.NewCoordinator(h.oracle, h.store, h.cfg.Fusion.MaxCustomers)

	progressChan := coordinator.Run(c.Request.Context(), pipeline.RunOptions{
		Bank1ExportPath: filepath.Join(bank1Dir, filepath.Base(req.Bank1File)),
		Bank2ExportPath: filepath.Join(bank2Dir, filepath.Base(req.Bank2File)),
		Bank1DataDir:    bank1Dir,
		Bank2DataDir:    bank2Dir,
		ArtifactDir:     config.ArtifactDir(h.dataDir),
	})

	// 流式发送进度事件
	for event := range progressChan {
		eventData, err := json.Marshal(event)
		if err != nil {
			continue
		}

		// SSE 格式: data: {json}\n\n
		fmt.Fprintf(c.Writer, "data: %s\n\n", eventData)
		flusher.Flush()
	}
}
