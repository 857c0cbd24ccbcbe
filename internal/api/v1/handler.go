package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/Leo-Zh9/bridgette/internal/config"
	"github.com/Leo-Zh9/bridgette/internal/oracle"
	"github.com/Leo-Zh9/bridgette/internal/store"
)

// Handler V1 API 处理器
type Handler struct {
	store     *store.Store
	oracle    oracle.Client
	cfg       *config.AppConfig
	dataDir   string
	downloads *artifactDownloadStore
}

// NewHandler 创建 V1 API 处理器
func NewHandler(st *store.Store, oracleClient oracle.Client, cfg *config.AppConfig, dataDir string) *Handler {
	return &Handler{
		store:     st,
		oracle:    oracleClient,
		cfg:       cfg,
		dataDir:   dataDir,
		downloads: newArtifactDownloadStore(),
	}
}

// RegisterRoutes 注册 V1 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 文件管理
	router.POST("/upload/:bank", h.Upload)
	router.GET("/files/:bank", h.ListFiles)
	router.POST("/files/preview", h.PreviewFile)

	// 模式枚举
	router.POST("/schemas/enumerate", h.EnumerateSchemas)

	// 对账执行
	router.POST("/reconcile", h.Reconcile)

	// 运行记录
	router.GET("/runs", h.ListRuns)
	router.GET("/runs/:id", h.GetRun)

	// 产物下载
	router.GET("/artifacts", h.ListArtifacts)
	router.POST("/artifacts/token", h.CreateArtifactToken)
	router.GET("/artifacts/download/:token", h.DownloadArtifact)
}
