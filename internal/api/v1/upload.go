package v1

import (
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Leo-Zh9/bridgette/internal/config"
	"github.com/Leo-Zh9/bridgette/internal/tabular"
)

// 单文件上传大小上限 10MB
const maxUploadSize = 10 << 20

// 允许上传的扩展名
var allowedExtensions = map[string]bool{
	".csv":  true,
	".xlsx": true,
	".xls":  true,
}

// validBank 银行路径参数只接受 bank1/bank2
func validBank(bank string) bool {
	return bank == "bank1" || bank == "bank2"
}

// UploadResponse 上传响应
type UploadResponse struct {
	FileName string `json:"file_name"`
	Bank     string `json:"bank"`
	Size     int64  `json:"size"`
}

// Upload 上传银行数据文件
// POST /api/upload/:bank
func (h *Handler) Upload(c *gin.Context) {
	bank := c.Param("bank")
	if !validBank(bank) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的银行标识, 只接受 bank1 或 bank2"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的表单数据"})
		return
	}

	files := form.File["file"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到上传文件"})
		return
	}

	uploadedFile := files[0]

	if uploadedFile.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "文件超过 10MB 上限"})
		return
	}

	ext := strings.ToLower(filepath.Ext(uploadedFile.Filename))
	if !allowedExtensions[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "不支持的文件类型, 只接受 csv/xlsx/xls"})
		return
	}

	// 只保留文件名部分，防止路径穿越
	name := filepath.Base(uploadedFile.Filename)
	destPath := filepath.Join(config.UploadDir(h.dataDir, bank), name)

	if err := c.SaveUploadedFile(uploadedFile, destPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存文件失败"})
		return
	}

	c.JSON(http.StatusOK, UploadResponse{
		FileName: name,
		Bank:     bank,
		Size:     uploadedFile.Size,
	})
}

// FileInfo 已上传文件信息
type FileInfo struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// ListFiles 列出指定银行已上传的文件
// GET /api/files/:bank
func (h *Handler) ListFiles(c *gin.Context) {
	bank := c.Param("bank")
	if !validBank(bank) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的银行标识"})
		return
	}

	dir := config.UploadDir(h.dataDir, bank)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			c.JSON(http.StatusOK, gin.H{"files": []FileInfo{}})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取上传目录失败"})
		return
	}

	files := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), "~$") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{Name: entry.Name(), Size: info.Size()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	c.JSON(http.StatusOK, gin.H{"files": files, "bank": bank})
}

// PreviewRequest 文件预览请求
type PreviewRequest struct {
	Bank     string `json:"bank" binding:"required"`
	FileName string `json:"file_name" binding:"required"`
}

// PreviewFile 预览文件的列头和前三行数据
// POST /api/files/preview
func (h *Handler) PreviewFile(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求参数"})
		return
	}
	if !validBank(req.Bank) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的银行标识"})
		return
	}

	path := filepath.Join(config.UploadDir(h.dataDir, req.Bank), filepath.Base(req.FileName))
	table, err := tabular.ReadTable(path)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "读取文件失败: " + err.Error()})
		return
	}

	preview := table.Rows
	if len(preview) > 3 {
		preview = preview[:3]
	}

	c.JSON(http.StatusOK, gin.H{
		"file_name": req.FileName,
		"columns":   table.Columns,
		"rows":      preview,
		"row_count": len(table.Rows),
	})
}
