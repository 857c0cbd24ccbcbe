package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Leo-Zh9/bridgette/internal/model"
	"github.com/Leo-Zh9/bridgette/internal/tabular"
)

// 产物文件名
const (
	MatchedFileName        = "matched_schemas.json"
	UnmatchedBank1FileName = "unmatched_bank1_schemas.json"
	UnmatchedBank2FileName = "unmatched_bank2_schemas.json"
	CombinedFileName       = "combined_customer_data.xlsx"
)

// Writer 对账产物落盘（无业务逻辑）
type Writer struct {
	dir string
}

// NewWriter 创建产物写入器，目录不存在时创建
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create artifact dir: %w", err)
	}
	return &Writer{dir: dir}, nil
}

// Dir 产物目录
func (w *Writer) Dir() string {
	return w.dir
}

// matchedDocument matched_schemas.json 的文档结构
type matchedDocument struct {
	MatchedSchemas []model.MatchPair `json:"matched_schemas"`
	Statistics     model.Statistics  `json:"statistics"`
}

// unmatchedDocument unmatched_bankN_schemas.json 的文档结构
type unmatchedDocument struct {
	UnmatchedSchemas []model.UnmatchedSchema `json:"unmatched_schemas"`
	Bank             string                  `json:"bank"`
	Count            int                     `json:"count"`
}

// WriteResult 把对账结果写成三个 JSON 产物，返回文件路径
func (w *Writer) WriteResult(result *model.ReconciliationResult) (map[string]string, error) {
	paths := make(map[string]string, 3)

	matched := result.Matched
	if matched == nil {
		matched = []model.MatchPair{}
	}
	matchedPath := filepath.Join(w.dir, MatchedFileName)
	if err := writeJSON(matchedPath, matchedDocument{
		MatchedSchemas: matched,
		Statistics:     result.Statistics,
	}); err != nil {
		return nil, err
	}
	paths["matched"] = matchedPath

	for _, bank := range []model.Bank{model.Bank1, model.Bank2} {
		unmatched := result.Unmatched(bank)
		if unmatched == nil {
			unmatched = []model.UnmatchedSchema{}
		}
		name := UnmatchedBank1FileName
		if bank == model.Bank2 {
			name = UnmatchedBank2FileName
		}
		path := filepath.Join(w.dir, name)
		if err := writeJSON(path, unmatchedDocument{
			UnmatchedSchemas: unmatched,
			Bank:             bank.Label(),
			Count:            len(unmatched),
		}); err != nil {
			return nil, err
		}
		paths["unmatched_"+string(bank)] = path
	}

	return paths, nil
}

// WriteCombined 把合并客户表写成 xlsx，返回文件路径
func (w *Writer) WriteCombined(table *model.CombinedTable) (string, error) {
	columns := append([]string{"customer_id"}, table.Columns...)

	rows := make([][]string, 0, len(table.Rows))
	for _, record := range table.Rows {
		row := make([]string, 0, len(columns))
		row = append(row, record.CustomerID)
		for _, col := range table.Columns {
			row = append(row, record.Values[col])
		}
		rows = append(rows, row)
	}

	path := filepath.Join(w.dir, CombinedFileName)
	if err := tabular.WriteTable(path, "Combined", columns, rows); err != nil {
		return "", fmt.Errorf("failed to write combined workbook: %w", err)
	}
	return path, nil
}

// ReadMatched 读回 matched_schemas.json（顺序保持）
func ReadMatched(path string) ([]model.MatchPair, model.Statistics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, model.Statistics{}, fmt.Errorf("failed to read matched artifact: %w", err)
	}

	var doc matchedDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, model.Statistics{}, fmt.Errorf("failed to decode matched artifact: %w", err)
	}
	return doc.MatchedSchemas, doc.Statistics, nil
}

// ReadUnmatched 读回 unmatched_bankN_schemas.json
func ReadUnmatched(path string) ([]model.UnmatchedSchema, string, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", 0, fmt.Errorf("failed to read unmatched artifact: %w", err)
	}

	var doc unmatchedDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, "", 0, fmt.Errorf("failed to decode unmatched artifact: %w", err)
	}
	return doc.UnmatchedSchemas, doc.Bank, doc.Count, nil
}

func writeJSON(path string, doc interface{}) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
