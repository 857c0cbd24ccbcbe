package corpus

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Leo-Zh9/bridgette/internal/model"
	"github.com/Leo-Zh9/bridgette/internal/tabular"
)

// ErrMalformedExport schema 导出文件完全无法解析（该次运行的致命错误）
var ErrMalformedExport = errors.New("malformed schema export")

// schema 名/描述在导出行中可能使用的键名
var (
	nameKeys        = []string{"name", "schema_name", "field_name"}
	descriptionKeys = []string{"description", "desc"}
)

// IsReservedSection 判断是否为保留节（元数据节，不参与计数）
// 约定：节名以 "_" 开头，或为 metadata/data（不区分大小写）。
func IsReservedSection(name string) bool {
	if strings.HasPrefix(name, "_") {
		return true
	}
	lower := strings.ToLower(name)
	return lower == "metadata" || lower == "data"
}

// looksLikeHeaderRow 判断一条记录是否是混入数据区的表头行
// 导出工具偶尔会把列头再输出一遍，需要剔除。
func looksLikeHeaderRow(row []string) bool {
	if len(row) < 2 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(row[0]))
	second := strings.ToLower(strings.TrimSpace(row[1]))
	if (first == "name" || second == "name") && (first == "description" || second == "description") {
		return true
	}
	for _, header := range []string{"field", "column", "attribute", "property"} {
		if first == header || second == header {
			return true
		}
	}
	return false
}

// BuildCorpus 从 schema 导出文件构建一家银行的 SchemaCorpus
// 每个工作表是一个类别，每行是一个 schema 条目。
func BuildCorpus(bank model.Bank, exportPath string) (*model.SchemaCorpus, error) {
	wb, err := tabular.ReadWorkbook(exportPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedExport, err)
	}
	return buildCorpusFromWorkbook(bank, wb), nil
}

func buildCorpusFromWorkbook(bank model.Bank, wb *tabular.Workbook) *model.SchemaCorpus {
	corpus := &model.SchemaCorpus{
		Bank:    bank,
		Entries: make(map[string][]model.SchemaEntry),
	}

	for _, sheet := range wb.Sheets {
		if IsReservedSection(sheet.Name) {
			continue
		}
		if len(sheet.Rows) < 2 {
			// 空表：类别保留，条目为零
			corpus.Categories = append(corpus.Categories, sheet.Name)
			continue
		}

		headers := sheet.Rows[0]
		var entries []model.SchemaEntry
		for _, row := range sheet.Rows[1:] {
			if looksLikeHeaderRow(row) {
				continue
			}
			record := rowToRecord(headers, row)
			name := firstNonEmpty(record, nameKeys)
			if name == "" {
				continue
			}
			entries = append(entries, model.SchemaEntry{
				Category:    sheet.Name,
				Name:        name,
				Description: firstNonEmpty(record, descriptionKeys),
				Record:      record,
			})
		}

		corpus.Categories = append(corpus.Categories, sheet.Name)
		corpus.Entries[sheet.Name] = entries
		corpus.Total += len(entries)
	}

	return corpus
}

// rowToRecord 按表头把一行转成键值记录，空列头跳过
func rowToRecord(headers, row []string) map[string]string {
	record := make(map[string]string, len(headers))
	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			continue
		}
		value := ""
		if i < len(row) {
			value = strings.TrimSpace(row[i])
		}
		record[header] = value
	}
	return record
}

func firstNonEmpty(record map[string]string, keys []string) string {
	for _, key := range keys {
		if v := record[key]; v != "" {
			return v
		}
	}
	return ""
}

// Enumerate 统计一个 schema 导出文件中的条目数
// 保留节不计入；没有数据行的节计 0。
func Enumerate(exportPath string) (*model.EnumerationResult, error) {
	wb, err := tabular.ReadWorkbook(exportPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedExport, err)
	}

	result := &model.EnumerationResult{
		FileName:      wb.FileName,
		SectionCounts: make(map[string]int),
	}

	corpus := buildCorpusFromWorkbook("", wb)
	for _, cat := range corpus.Categories {
		count := len(corpus.Entries[cat])
		result.SectionCounts[cat] = count
		result.TotalSchemas += count
	}
	result.SectionNumber = len(result.SectionCounts)

	return result, nil
}

// EnumerateCorpus 对已构建的语料做计数（与 Enumerate 同口径）
func EnumerateCorpus(corpus *model.SchemaCorpus, fileName string) *model.EnumerationResult {
	result := &model.EnumerationResult{
		FileName:      fileName,
		SectionCounts: make(map[string]int),
	}
	for _, cat := range corpus.Categories {
		count := len(corpus.Entries[cat])
		result.SectionCounts[cat] = count
		result.TotalSchemas += count
	}
	result.SectionNumber = len(result.SectionCounts)
	return result
}
