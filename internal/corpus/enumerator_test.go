package corpus

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/Leo-Zh9/bridgette/internal/model"
)

// writeWorkbook 在临时目录生成一个多工作表的 xlsx 测试文件
func writeWorkbook(t *testing.T, path string, sheets []struct {
	name string
	rows [][]interface{}
}) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			f.SetSheetName(f.GetSheetName(0), sheet.name)
		} else {
			if _, err := f.NewSheet(sheet.name); err != nil {
				t.Fatalf("new sheet %s: %v", sheet.name, err)
			}
		}
		for r, row := range sheet.rows {
			axis, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				t.Fatalf("cell axis: %v", err)
			}
			if err := f.SetSheetRow(sheet.name, axis, &row); err != nil {
				t.Fatalf("set row: %v", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
}

func TestBuildCorpus_SkipsReservedSectionsAndHeaderRows(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "schemas.xlsx")
	writeWorkbook(t, path, []struct {
		name string
		rows [][]interface{}
	}{
		{name: "Customer", rows: [][]interface{}{
			{"name", "description"},
			{"fullName", "客户全名"},
			{"name", "description"}, // 数据区混入的表头行
			{"phone", "联系电话"},
			{"", "没有名字的行要跳过"},
		}},
		{name: "_Reserved", rows: [][]interface{}{
			{"name", "description"},
			{"ghost", "保留节不计入"},
		}},
		{name: "Metadata", rows: [][]interface{}{
			{"name", "description"},
			{"version", "保留节不计入"},
		}},
		{name: "Account", rows: [][]interface{}{
			{"name", "description"},
		}},
	})

	corpus, err := BuildCorpus(model.Bank1, path)
	if err != nil {
		t.Fatalf("build corpus: %v", err)
	}

	if corpus.Total != 2 {
		t.Fatalf("total = %d, want 2", corpus.Total)
	}
	if got := len(corpus.Entries["Customer"]); got != 2 {
		t.Fatalf("customer entries = %d, want 2", got)
	}
	if _, ok := corpus.Entries["_Reserved"]; ok {
		t.Fatal("reserved section should be skipped")
	}
	if _, ok := corpus.Entries["Metadata"]; ok {
		t.Fatal("metadata section should be skipped")
	}

	// 空类别保留，计 0
	if got := len(corpus.Entries["Account"]); got != 0 {
		t.Fatalf("account entries = %d, want 0", got)
	}

	first := corpus.Entries["Customer"][0]
	if first.Name != "fullName" || first.Category != "Customer" || first.Description != "客户全名" {
		t.Fatalf("unexpected first entry: %+v", first)
	}
	if first.Key() != "Customer/fullName" {
		t.Fatalf("key = %q", first.Key())
	}
}

func TestEnumerate_SectionCounts(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "schemas.xlsx")
	writeWorkbook(t, path, []struct {
		name string
		rows [][]interface{}
	}{
		{name: "Customer", rows: [][]interface{}{
			{"name", "description"},
			{"fullName", "客户全名"},
			{"phone", "联系电话"},
			{"email", "电子邮箱"},
		}},
		{name: "Address", rows: [][]interface{}{
			{"name", "description"},
			{"city", "城市"},
		}},
	})

	result, err := Enumerate(path)
	if err != nil {
		t.Fatalf("enumerate: %v", err)
	}

	if result.TotalSchemas != 4 {
		t.Fatalf("total = %d, want 4", result.TotalSchemas)
	}
	if result.SectionNumber != 2 {
		t.Fatalf("sections = %d, want 2", result.SectionNumber)
	}
	if result.SectionCounts["Customer"] != 3 || result.SectionCounts["Address"] != 1 {
		t.Fatalf("unexpected section counts: %v", result.SectionCounts)
	}
}

func TestBuildCorpus_CSVIsReservedDataSheet(t *testing.T) {
	t.Parallel()
	// CSV 导出只有一张名为 data 的工作表，属保留节，枚举结果为 0
	path := filepath.Join(t.TempDir(), "schemas.csv")
	content := "name,description\nfullName,客户全名\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	corpus, err := BuildCorpus(model.Bank1, path)
	if err != nil {
		t.Fatalf("build corpus: %v", err)
	}
	if corpus.Total != 0 {
		t.Fatalf("total = %d, want 0", corpus.Total)
	}
}

func TestBuildCorpus_MalformedFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "broken.xlsx")
	if err := os.WriteFile(path, []byte("not an xlsx"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	_, err := BuildCorpus(model.Bank1, path)
	if !errors.Is(err, ErrMalformedExport) {
		t.Fatalf("err = %v, want ErrMalformedExport", err)
	}
}
