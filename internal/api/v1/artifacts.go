package v1

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Leo-Zh9/bridgette/internal/artifact"
	"github.com/Leo-Zh9/bridgette/internal/config"
)

// 可下载的产物文件名白名单
var downloadableArtifacts = map[string]bool{
	artifact.MatchedFileName:        true,
	artifact.UnmatchedBank1FileName: true,
	artifact.UnmatchedBank2FileName: true,
	artifact.CombinedFileName:       true,
}

// ArtifactInfo 产物文件信息
type ArtifactInfo struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// ListArtifacts 列出当前产物目录下的文件
// GET /api/artifacts
func (h *Handler) ListArtifacts(c *gin.Context) {
	dir := config.ArtifactDir(h.dataDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			c.JSON(http.StatusOK, gin.H{"artifacts": []ArtifactInfo{}})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取产物目录失败"})
		return
	}

	artifacts := make([]ArtifactInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !downloadableArtifacts[entry.Name()] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		artifacts = append(artifacts, ArtifactInfo{
			Name:       entry.Name(),
			Size:       info.Size(),
			ModifiedAt: info.ModTime(),
		})
	}

	c.JSON(http.StatusOK, gin.H{"artifacts": artifacts})
}

// ArtifactTokenRequest 产物下载令牌请求
type ArtifactTokenRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateArtifactToken 为产物文件签发一次性下载令牌
// POST /api/artifacts/token
func (h *Handler) CreateArtifactToken(c *gin.Context) {
	var req ArtifactTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求参数"})
		return
	}

	name := filepath.Base(req.Name)
	if !downloadableArtifacts[name] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未知的产物文件"})
		return
	}

	path := filepath.Join(config.ArtifactDir(h.dataDir), name)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "产物文件不存在, 请先执行对账"})
		return
	}

	token := h.downloads.put(path, name, 10*time.Minute)
	c.JSON(http.StatusOK, gin.H{
		"token":        token,
		"download_url": "/api/artifacts/download/" + token,
	})
}

// DownloadArtifact 按令牌下载产物文件（一次性）
// GET /api/artifacts/download/:token
func (h *Handler) DownloadArtifact(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少 token"})
		return
	}

	item, ok := h.downloads.take(token)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "下载链接已失效"})
		return
	}

	if _, err := os.Stat(item.filePath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "产物文件不存在"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+item.name+`"`)
	c.Header("Content-Type", item.contentType)
	c.File(item.filePath)
}
