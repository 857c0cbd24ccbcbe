package v1

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/Leo-Zh9/bridgette/internal/config"
	"github.com/Leo-Zh9/bridgette/internal/corpus"
	"github.com/Leo-Zh9/bridgette/internal/model"
)

// EnumerateRequest 模式枚举请求
type EnumerateRequest struct {
	Bank     string `json:"bank" binding:"required"`
	FileName string `json:"file_name" binding:"required"`
}

// EnumerateSchemas 枚举模式导出文件中的模式条目
// POST /api/schemas/enumerate
func (h *Handler) EnumerateSchemas(c *gin.Context) {
	var req EnumerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求参数"})
		return
	}
	if !validBank(req.Bank) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的银行标识"})
		return
	}

	bank := model.Bank1
	if req.Bank == "bank2" {
		bank = model.Bank2
	}

	path := filepath.Join(config.UploadDir(h.dataDir, req.Bank), filepath.Base(req.FileName))
	schemaCorpus, err := corpus.BuildCorpus(bank, path)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "枚举失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, corpus.EnumerateCorpus(schemaCorpus, filepath.Base(req.FileName)))
}
