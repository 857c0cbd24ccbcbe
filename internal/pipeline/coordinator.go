package pipeline

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/Leo-Zh9/bridgette/internal/artifact"
	"github.com/Leo-Zh9/bridgette/internal/catalog"
	"github.com/Leo-Zh9/bridgette/internal/corpus"
	"github.com/Leo-Zh9/bridgette/internal/extract"
	"github.com/Leo-Zh9/bridgette/internal/fusion"
	"github.com/Leo-Zh9/bridgette/internal/match"
	"github.com/Leo-Zh9/bridgette/internal/model"
	"github.com/Leo-Zh9/bridgette/internal/oracle"
	"github.com/Leo-Zh9/bridgette/internal/store"
)

// Coordinator 对账流水线协调器
type Coordinator struct {
	oracle       oracle.Client
	store        *store.Store
	maxCustomers int
}

// NewCoordinator 创建对账协调器，store 可为 nil（不落运行记录）
func NewCoordinator(oracleClient oracle.Client, st *store.Store, maxCustomers int) *Coordinator {
	if maxCustomers <= 0 {
		maxCustomers = fusion.DefaultMaxCustomers
	}
	return &Coordinator{
		oracle:       oracleClient,
		store:        st,
		maxCustomers: maxCustomers,
	}
}

// RunOptions 一次对账运行的输入
type RunOptions struct {
	Bank1ExportPath string // Bank 1 模式导出文件
	Bank2ExportPath string // Bank 2 模式导出文件
	Bank1DataDir    string // Bank 1 分类数据目录
	Bank2DataDir    string // Bank 2 分类数据目录
	ArtifactDir     string // 产物输出目录
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string      `json:"type"`      // start/info/warning/done/error
	Message   string      `json:"message"`   // 事件消息
	Data      interface{} `json:"data"`      // 附加数据
	Timestamp time.Time   `json:"timestamp"` // 时间戳
}

// RunResult 一次完整运行的汇总
type RunResult struct {
	RunID         string              `json:"run_id"`
	Degraded      bool                `json:"degraded"`
	Statistics    model.Statistics    `json:"statistics"`
	Warnings      []string            `json:"warnings,omitempty"`
	ArtifactPaths map[string]string   `json:"artifact_paths"`
	FusionReport  *model.FusionReport `json:"fusion_report,omitempty"`
	Duration      time.Duration       `json:"duration"`
}

// Run 执行完整对账流水线，返回进度通道
func (c *Coordinator) Run(ctx context.Context, opts RunOptions) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 100)

	go func() {
		defer close(progressChan)
		c.doRun(ctx, opts, progressChan)
	}()

	return progressChan
}

// doRun 执行对账逻辑
func (c *Coordinator) doRun(ctx context.Context, opts RunOptions, progressChan chan ProgressEvent) {
	startTime := time.Now()
	runID := uuid.New().String()

	c.sendProgress(progressChan, ProgressEvent{
		Type:    "start",
		Message: "开始银行模式对账",
		Data: map[string]string{
			"run_id":     runID,
			"bank1_file": filepath.Base(opts.Bank1ExportPath),
			"bank2_file": filepath.Base(opts.Bank2ExportPath),
		},
		Timestamp: time.Now(),
	})

	if c.store != nil {
		if err := c.store.CreateRun(runID, filepath.Base(opts.Bank1ExportPath), filepath.Base(opts.Bank2ExportPath)); err != nil {
			log.Printf("[WARN] failed to record run start: %v", err)
		}
	}

	result, err := c.runPipeline(ctx, runID, opts, progressChan)
	if err != nil {
		if c.store != nil {
			if dbErr := c.store.FailRun(runID, err.Error()); dbErr != nil {
				log.Printf("[WARN] failed to record run failure: %v", dbErr)
			}
		}
		c.sendProgress(progressChan, ProgressEvent{
			Type:      "error",
			Message:   fmt.Sprintf("对账失败: %v", err),
			Timestamp: time.Now(),
		})
		return
	}

	result.Duration = time.Since(startTime)

	c.sendProgress(progressChan, ProgressEvent{
		Type:      "done",
		Message:   "对账完成",
		Data:      result,
		Timestamp: time.Now(),
	})
}

// runPipeline 流水线主体：枚举、匹配、合并、产物落盘
func (c *Coordinator) runPipeline(ctx context.Context, runID string, opts RunOptions, progressChan chan ProgressEvent) (*RunResult, error) {
	// 阶段一：枚举两侧模式语料
	corpus1, err := corpus.BuildCorpus(model.Bank1, opts.Bank1ExportPath)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate bank 1 schemas: %w", err)
	}
	c.sendProgress(progressChan, ProgressEvent{
		Type:      "info",
		Message:   fmt.Sprintf("Bank 1 枚举完成: %d 个模式", corpus1.Total),
		Data:      corpus.EnumerateCorpus(corpus1, filepath.Base(opts.Bank1ExportPath)),
		Timestamp: time.Now(),
	})

	corpus2, err := corpus.BuildCorpus(model.Bank2, opts.Bank2ExportPath)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate bank 2 schemas: %w", err)
	}
	c.sendProgress(progressChan, ProgressEvent{
		Type:      "info",
		Message:   fmt.Sprintf("Bank 2 枚举完成: %d 个模式", corpus2.Total),
		Data:      corpus.EnumerateCorpus(corpus2, filepath.Base(opts.Bank2ExportPath)),
		Timestamp: time.Now(),
	})

	// 阶段二：请求模式对应关系
	result, degraded := c.resolveCorrespondence(ctx, corpus1, corpus2, progressChan)

	if err := match.CheckCompleteness(result, corpus1, corpus2); err != nil {
		c.sendProgress(progressChan, ProgressEvent{
			Type:      "warning",
			Message:   fmt.Sprintf("模式计数校验未通过: %v", err),
			Timestamp: time.Now(),
		})
	}
	for _, warning := range result.Warnings {
		c.sendProgress(progressChan, ProgressEvent{
			Type:      "warning",
			Message:   warning,
			Timestamp: time.Now(),
		})
	}

	// 阶段三：JSON 产物落盘
	writer, err := artifact.NewWriter(opts.ArtifactDir)
	if err != nil {
		return nil, err
	}
	paths, err := writer.WriteResult(result)
	if err != nil {
		return nil, err
	}
	c.sendProgress(progressChan, ProgressEvent{
		Type:    "info",
		Message: fmt.Sprintf("对账结果已保存: 匹配 %d, Bank 1 未匹配 %d, Bank 2 未匹配 %d", result.Statistics.TotalMatched, result.Statistics.TotalUnmatchedBank1, result.Statistics.TotalUnmatchedBank2),
		Data:      result.Statistics,
		Timestamp: time.Now(),
	})

	// 阶段四：客户数据合并
	var report *model.FusionReport
	var customerRows, columnCount int
	if len(result.Matched) > 0 {
		table, fusionReport, err := c.fuseCustomerData(opts, result, progressChan)
		if err != nil {
			// 合并失败不中断整次运行，JSON 产物已经落盘
			c.sendProgress(progressChan, ProgressEvent{
				Type:      "warning",
				Message:   fmt.Sprintf("客户数据合并失败: %v", err),
				Timestamp: time.Now(),
			})
		} else {
			combinedPath, err := writer.WriteCombined(table)
			if err != nil {
				return nil, err
			}
			paths["combined"] = combinedPath
			report = fusionReport
			customerRows = len(table.Rows)
			columnCount = len(table.Columns)
			c.sendProgress(progressChan, ProgressEvent{
				Type:      "info",
				Message:   fmt.Sprintf("合并客户表已生成: %d 行 x %d 列", customerRows, columnCount),
				Data:      fusionReport,
				Timestamp: time.Now(),
			})
		}
	} else {
		c.sendProgress(progressChan, ProgressEvent{
			Type:      "info",
			Message:   "没有匹配的模式对，跳过客户数据合并",
			Timestamp: time.Now(),
		})
	}

	if c.store != nil {
		err := c.store.CompleteRun(runID, store.RunSummary{
			Degraded:            degraded,
			TotalSchemasBank1:   corpus1.Total,
			TotalSchemasBank2:   corpus2.Total,
			MatchedCount:        result.Statistics.TotalMatched,
			UnmatchedBank1Count: result.Statistics.TotalUnmatchedBank1,
			UnmatchedBank2Count: result.Statistics.TotalUnmatchedBank2,
			CustomerRows:        customerRows,
			ColumnCount:         columnCount,
		})
		if err != nil {
			log.Printf("[WARN] failed to record run completion: %v", err)
		}
	}

	return &RunResult{
		RunID:         runID,
		Degraded:      degraded,
		Statistics:    result.Statistics,
		Warnings:      result.Warnings,
		ArtifactPaths: paths,
		FusionReport:  report,
	}, nil
}

// resolveCorrespondence 请求对应关系并解析，失败时降级为全部未匹配
func (c *Coordinator) resolveCorrespondence(ctx context.Context, corpus1, corpus2 *model.SchemaCorpus, progressChan chan ProgressEvent) (*model.ReconciliationResult, bool) {
	json1, err := corpus.Serialize(corpus1)
	if err != nil {
		c.sendProgress(progressChan, ProgressEvent{
			Type:      "warning",
			Message:   fmt.Sprintf("Bank 1 语料序列化失败, 降级为全部未匹配: %v", err),
			Timestamp: time.Now(),
		})
		return match.AllUnmatched(corpus1, corpus2), true
	}
	json2, err := corpus.Serialize(corpus2)
	if err != nil {
		c.sendProgress(progressChan, ProgressEvent{
			Type:      "warning",
			Message:   fmt.Sprintf("Bank 2 语料序列化失败, 降级为全部未匹配: %v", err),
			Timestamp: time.Now(),
		})
		return match.AllUnmatched(corpus1, corpus2), true
	}

	json1, json2, truncated := corpus.TruncatePayloads(json1, json2)
	if truncated {
		c.sendProgress(progressChan, ProgressEvent{
			Type:      "warning",
			Message:   "语料超出长度预算, 已截断后提交",
			Timestamp: time.Now(),
		})
	}

	c.sendProgress(progressChan, ProgressEvent{
		Type:      "info",
		Message:   "正在请求模式对应关系...",
		Timestamp: time.Now(),
	})

	prompt := oracle.BuildPrompt(corpus1.Total, corpus2.Total, json1, json2)
	response, err := c.oracle.Propose(ctx, prompt)
	if err != nil {
		c.sendProgress(progressChan, ProgressEvent{
			Type:      "warning",
			Message:   fmt.Sprintf("对应关系服务不可用, 降级为全部未匹配: %v", err),
			Timestamp: time.Now(),
		})
		return match.AllUnmatched(corpus1, corpus2), true
	}

	parser := match.NewParser(corpus1, corpus2)
	result, err := parser.Parse(response)
	if err != nil {
		c.sendProgress(progressChan, ProgressEvent{
			Type:      "warning",
			Message:   fmt.Sprintf("响应解析失败, 降级为全部未匹配: %v", err),
			Timestamp: time.Now(),
		})
		return match.AllUnmatched(corpus1, corpus2), true
	}

	return result, false
}

// fuseCustomerData 按匹配结果合并两侧客户数据
func (c *Coordinator) fuseCustomerData(opts RunOptions, result *model.ReconciliationResult, progressChan chan ProgressEvent) (*model.CombinedTable, *model.FusionReport, error) {
	index1 := catalog.NewIndex(opts.Bank1DataDir)
	index2 := catalog.NewIndex(opts.Bank2DataDir)

	resolver, err := extract.NewIdentityResolver(index2)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build identity resolver: %w", err)
	}
	c.sendProgress(progressChan, ProgressEvent{
		Type:      "info",
		Message:   fmt.Sprintf("身份映射已建立: %d 个代理键", resolver.Size()),
		Timestamp: time.Now(),
	})

	fuser := fusion.NewFuser(index1, index2, resolver)
	return fuser.Fuse(result.Matched, fusion.FuseOptions{
		MaxCustomers: c.maxCustomers,
		Progress: func(stage string) {
			c.sendProgress(progressChan, ProgressEvent{
				Type:      "info",
				Message:   stage,
				Timestamp: time.Now(),
			})
		},
	})
}

// sendProgress 发送进度事件
func (c *Coordinator) sendProgress(ch chan ProgressEvent, event ProgressEvent) {
	select {
	case ch <- event:
	default:
		// 通道已满，丢弃事件
	}
}
