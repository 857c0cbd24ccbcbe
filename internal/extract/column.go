package extract

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"github.com/Leo-Zh9/bridgette/internal/tabular"
)

// ErrColumnNotFound 目标列或标识列不存在（可恢复，调用方按空结果继续）
var ErrColumnNotFound = errors.New("column not found")

// Column 从一个数据文件中抽取一列，按标识列的值建映射
// 标识值重复时后行覆盖前行（有意保留，与导出文件的修订习惯一致）。
// 列缺失不视为失败：返回空映射和 ErrColumnNotFound。
func Column(path, columnName, idColumn string) (map[string]string, error) {
	table, err := tabular.ReadTable(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	return columnFromTable(table, path, columnName, idColumn)
}

func columnFromTable(table *tabular.Table, path, columnName, idColumn string) (map[string]string, error) {
	colIdx := table.ColumnIndex(columnName)
	if colIdx < 0 {
		log.Printf("[WARN] 列 %q 在 %s 中不存在", columnName, filepath.Base(path))
		return map[string]string{}, fmt.Errorf("%w: %s", ErrColumnNotFound, columnName)
	}

	idIdx := table.ColumnIndex(idColumn)
	if idIdx < 0 {
		log.Printf("[WARN] 标识列 %q 在 %s 中不存在", idColumn, filepath.Base(path))
		return map[string]string{}, fmt.Errorf("%w: %s", ErrColumnNotFound, idColumn)
	}

	values := make(map[string]string)
	for _, row := range table.Rows {
		id := table.Cell(row, idIdx)
		if id == "" {
			continue
		}
		values[id] = table.Cell(row, colIdx)
	}
	return values, nil
}

// ColumnValues 抽取一列的全部取值（按行序，含重复）
func ColumnValues(path, columnName string) ([]string, error) {
	table, err := tabular.ReadTable(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}

	colIdx := table.ColumnIndex(columnName)
	if colIdx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, columnName)
	}

	var values []string
	for _, row := range table.Rows {
		if v := table.Cell(row, colIdx); v != "" {
			values = append(values, v)
		}
	}
	return values, nil
}
