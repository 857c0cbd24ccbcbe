package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Table 一张有序的二维表
type Table struct {
	Columns []string   // 表头（第一行）
	Rows    [][]string // 数据行（不含表头）
}

// ColumnIndex 按列名查找列下标，找不到返回 -1
func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if strings.TrimSpace(col) == name {
			return i
		}
	}
	return -1
}

// Cell 取一行中指定列的值，越界返回空串
func (t *Table) Cell(row []string, colIdx int) string {
	if colIdx < 0 || colIdx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[colIdx])
}

// Sheet 工作簿中的一个工作表
type Sheet struct {
	Name string
	Rows [][]string // 含表头
}

// Workbook 一个数据导出文件的全部工作表（保持文件内顺序）
type Workbook struct {
	FileName string
	Sheets   []Sheet
}

// ReadTable 读取单表文件（CSV 取整个文件，Excel 取第一个工作表）
func ReadTable(path string) (*Table, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return readCSVTable(path)
	case ".xlsx", ".xlsm":
		return readExcelTable(path)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}
}

// ReadWorkbook 读取文件的全部工作表
// CSV 文件视为单张名为 "data" 的工作表。
func ReadWorkbook(path string) (*Workbook, error) {
	wb := &Workbook{FileName: filepath.Base(path)}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		table, err := readCSVTable(path)
		if err != nil {
			return nil, err
		}
		rows := append([][]string{table.Columns}, table.Rows...)
		wb.Sheets = append(wb.Sheets, Sheet{Name: "data", Rows: rows})
		return wb, nil
	case ".xlsx", ".xlsm":
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open workbook: %w", err)
		}
		defer f.Close()

		for _, sheetName := range f.GetSheetList() {
			rows, err := f.GetRows(sheetName)
			if err != nil {
				return nil, fmt.Errorf("failed to read sheet %q: %w", sheetName, err)
			}
			wb.Sheets = append(wb.Sheets, Sheet{Name: sheetName, Rows: rows})
		}
		return wb, nil
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
}

func readCSVTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // 允许行长度不一致

	var table Table
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		if first {
			table.Columns = record
			first = false
			continue
		}
		table.Rows = append(table.Rows, record)
	}

	return &table, nil
}

func readExcelTable(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &Table{}, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return &Table{}, nil
	}

	return &Table{Columns: rows[0], Rows: rows[1:]}, nil
}
