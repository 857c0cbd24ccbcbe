package fusion

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Leo-Zh9/bridgette/internal/catalog"
	"github.com/Leo-Zh9/bridgette/internal/extract"
	"github.com/Leo-Zh9/bridgette/internal/model"
)

// DefaultMaxCustomers 每家银行处理的客户数上限（性能边界，不影响正确性）
const DefaultMaxCustomers = 1000

// Fuser 跨行客户数据融合器
//
// 两家银行的客户不做互相匹配：行键按来源打前缀（B1_/B2_），
// 每个匹配对是一列，取值只来自该客户所属银行。
type Fuser struct {
	index1   *catalog.Index
	index2   *catalog.Index
	resolver *extract.IdentityResolver

	// 每次融合运行的抽取缓存，键为 bank_类别_名称，避免重复读文件
	dataMaps map[string]map[string]string
}

// NewFuser 创建融合器
func NewFuser(index1, index2 *catalog.Index, resolver *extract.IdentityResolver) *Fuser {
	return &Fuser{
		index1:   index1,
		index2:   index2,
		resolver: resolver,
	}
}

// FuseOptions 融合选项
type FuseOptions struct {
	MaxCustomers int               // 每家银行的客户数上限，0 取默认值
	Progress     func(stage string) // 阶段进度回调，可为 nil
}

// Fuse 按匹配对构建合并客户表
func (f *Fuser) Fuse(matched []model.MatchPair, opts FuseOptions) (*model.CombinedTable, *model.FusionReport, error) {
	maxCustomers := opts.MaxCustomers
	if maxCustomers <= 0 {
		maxCustomers = DefaultMaxCustomers
	}
	progress := opts.Progress
	if progress == nil {
		progress = func(string) {}
	}
	f.dataMaps = make(map[string]map[string]string)

	report := &model.FusionReport{}

	// 1. 分别收集两家银行的客户 ID（不跨行匹配）
	progress("收集客户 ID")
	ids1, err := f.collectCustomerIDs(model.Bank1, maxCustomers)
	if err != nil {
		return nil, nil, err
	}
	ids2, err := f.collectCustomerIDs(model.Bank2, maxCustomers)
	if err != nil {
		return nil, nil, err
	}
	report.Bank1Customers = len(ids1)
	report.Bank2Customers = len(ids2)

	// 2. 预加载每个匹配对两侧的取值映射
	progress("预加载列数据")
	for _, pair := range matched {
		f.loadPairMaps(pair, report)
	}

	// 3. 空映射补救：账户/交易类经外键链重试一次
	progress("补救空数据列")
	f.repairEmptyMaps(matched, report)

	// 4. 逐客户装配合并行
	progress("装配合并表")
	table := &model.CombinedTable{}
	seenColumns := make(map[string]bool)
	for _, pair := range matched {
		col := model.CombinedColumnName(pair)
		if !seenColumns[col] {
			seenColumns[col] = true
			table.Columns = append(table.Columns, col)
		}
	}
	report.ColumnCount = len(table.Columns)

	for _, id := range ids1 {
		table.Rows = append(table.Rows, f.buildRow(model.Bank1, id, matched))
	}
	for _, id := range ids2 {
		table.Rows = append(table.Rows, f.buildRow(model.Bank2, id, matched))
	}

	f.countEmptyPairs(matched, report)
	return table, report, nil
}

// collectCustomerIDs 从客户类文件收集一家银行的客户 ID（保持文件内顺序，截断到上限）
func (f *Fuser) collectCustomerIDs(bank model.Bank, maxCustomers int) ([]string, error) {
	files, err := f.indexFor(bank).FindFiles("customer")
	if err != nil {
		return nil, fmt.Errorf("failed to locate %s customer files: %w", bank, err)
	}

	idColumn := "customerId"
	if bank == model.Bank2 {
		idColumn = "id"
	}

	var ids []string
	seen := make(map[string]bool)
	for _, path := range files {
		values, err := extract.ColumnValues(path, idColumn)
		if err != nil {
			// 单个文件缺列不致命
			continue
		}
		for _, id := range values {
			if seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
			if len(ids) >= maxCustomers {
				return ids, nil
			}
		}
	}
	return ids, nil
}

// loadPairMaps 预加载一个匹配对两侧的 id->取值映射（带缓存）
func (f *Fuser) loadPairMaps(pair model.MatchPair, report *model.FusionReport) {
	f.loadSideMap(model.Bank1, pair.Bank1, report)
	f.loadSideMap(model.Bank2, pair.Bank2, report)
}

func (f *Fuser) loadSideMap(bank model.Bank, side model.MatchSide, report *model.FusionReport) {
	key := cacheKey(bank, side)
	if _, ok := f.dataMaps[key]; ok {
		return
	}

	files, err := f.indexFor(bank).FindFiles(side.Category)
	if err != nil || len(files) == 0 {
		if err == nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s 类别 %q 没有解析到数据文件", bank.Label(), side.Category))
		}
		f.dataMaps[key] = map[string]string{}
		return
	}

	for _, path := range files {
		values := f.extractResolved(bank, path, side.Schema)
		if len(values) > 0 {
			f.dataMaps[key] = values
			return
		}
	}
	f.dataMaps[key] = map[string]string{}
}

// extractResolved 抽取一列并把代理键翻译到客户 ID 空间
func (f *Fuser) extractResolved(bank model.Bank, path, column string) map[string]string {
	idColumn := extract.IDColumnFor(bank, path)
	values, _ := extract.Column(path, column, idColumn)

	if bank == model.Bank2 && extract.NeedsIdentityResolution(idColumn) && f.resolver != nil {
		return f.resolver.ResolveMap(values)
	}
	return values
}

// repairEmptyMaps 空映射补救
// 类别名暗示账户/交易的列，换用外键链再抽一次。补救不保证成功。
func (f *Fuser) repairEmptyMaps(matched []model.MatchPair, report *model.FusionReport) {
	for _, pair := range matched {
		for _, side := range []struct {
			bank model.Bank
			side model.MatchSide
		}{{model.Bank1, pair.Bank1}, {model.Bank2, pair.Bank2}} {
			key := cacheKey(side.bank, side.side)
			if len(f.dataMaps[key]) > 0 {
				continue
			}
			categoryLower := strings.ToLower(side.side.Category)
			if !strings.Contains(categoryLower, "account") && !strings.Contains(categoryLower, "transaction") {
				continue
			}
			if repaired := f.retryWithForeignKey(side.bank, side.side); len(repaired) > 0 {
				f.dataMaps[key] = repaired
				report.RepairedPairs++
			}
		}
	}
}

// retryWithForeignKey 用角色外键列重抽（账户文件走 accountHolderKey，
// 交易文件走 parentAccountKey/accountId）
func (f *Fuser) retryWithForeignKey(bank model.Bank, side model.MatchSide) map[string]string {
	files, err := f.indexFor(bank).FindFiles(side.Category)
	if err != nil {
		return nil
	}

	isTransaction := strings.Contains(strings.ToLower(side.Category), "transaction")
	for _, path := range files {
		filename := strings.ToLower(filepath.Base(path))
		if isTransaction && !strings.Contains(filename, "transaction") {
			continue
		}
		if !isTransaction && !strings.Contains(filename, "account") {
			continue
		}

		var idColumn string
		if bank == model.Bank1 {
			idColumn = "accountId"
			if !isTransaction {
				idColumn = "customerId"
			}
		} else {
			idColumn = "parentAccountKey"
			if !isTransaction {
				idColumn = "accountHolderKey"
			}
		}

		values, _ := extract.Column(path, side.Schema, idColumn)
		if bank == model.Bank2 && f.resolver != nil {
			// 交易外键指向账户而非客户，直接查客户代理键表只会偶然命中，
			// 属已知的不完整启发式，保留现状。
			values = f.resolver.ResolveMap(values)
		}
		if len(values) > 0 {
			return values
		}
	}
	return nil
}

// buildRow 装配一个客户的合并行
// 取值只查该客户所属银行侧的映射，另一侧一律缺失。
func (f *Fuser) buildRow(bank model.Bank, rawID string, matched []model.MatchPair) model.CombinedRecord {
	record := model.CombinedRecord{
		CustomerID: bank.Prefix() + rawID,
		Bank:       bank,
		Values:     make(map[string]string),
	}

	for _, pair := range matched {
		col := model.CombinedColumnName(pair)
		side := pair.Bank1
		if bank == model.Bank2 {
			side = pair.Bank2
		}
		if value, ok := f.dataMaps[cacheKey(bank, side)][rawID]; ok && value != "" {
			record.Values[col] = value
		}
	}
	return record
}

func (f *Fuser) countEmptyPairs(matched []model.MatchPair, report *model.FusionReport) {
	for _, pair := range matched {
		if len(f.dataMaps[cacheKey(model.Bank1, pair.Bank1)]) == 0 &&
			len(f.dataMaps[cacheKey(model.Bank2, pair.Bank2)]) == 0 {
			report.EmptyPairs++
		}
	}
}

func (f *Fuser) indexFor(bank model.Bank) *catalog.Index {
	if bank == model.Bank1 {
		return f.index1
	}
	return f.index2
}

func cacheKey(bank model.Bank, side model.MatchSide) string {
	return string(bank) + "_" + side.Category + "_" + side.Schema
}
