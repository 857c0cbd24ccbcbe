package fusion

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Leo-Zh9/bridgette/internal/catalog"
	"github.com/Leo-Zh9/bridgette/internal/extract"
	"github.com/Leo-Zh9/bridgette/internal/model"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func newTestFuser(t *testing.T) (*Fuser, string, string) {
	t.Helper()
	bank1Dir := t.TempDir()
	bank2Dir := t.TempDir()

	writeFile(t, bank1Dir, "Customers.csv",
		"customerId,name,phone\nC1,Alice,111\nC2,Bob,222\n")
	writeFile(t, bank2Dir, "Customers.csv",
		"id,encodedKey,fullName,mobile\nK1,8a001,Carol,333\n")

	index1 := catalog.NewIndex(bank1Dir)
	index2 := catalog.NewIndex(bank2Dir)
	resolver, err := extract.NewIdentityResolver(index2)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	return NewFuser(index1, index2, resolver), bank1Dir, bank2Dir
}

func TestFuse_NamespaceSeparation(t *testing.T) {
	t.Parallel()
	fuser, _, _ := newTestFuser(t)

	matched := []model.MatchPair{
		{
			Bank1: model.MatchSide{Category: "Customer", Schema: "phone"},
			Bank2: model.MatchSide{Category: "Customer", Schema: "mobile"},
		},
	}

	table, report, err := fuser.Fuse(matched, FuseOptions{})
	if err != nil {
		t.Fatalf("fuse: %v", err)
	}

	if report.Bank1Customers != 2 || report.Bank2Customers != 1 {
		t.Fatalf("report = %+v", report)
	}
	if len(table.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(table.Rows))
	}

	col := model.CombinedColumnName(matched[0])
	if col != "Customer_phone_to_Customer_mobile" {
		t.Fatalf("column name = %q", col)
	}
	if len(table.Columns) != 1 || table.Columns[0] != col {
		t.Fatalf("columns = %v", table.Columns)
	}

	byID := make(map[string]model.CombinedRecord)
	for _, row := range table.Rows {
		byID[row.CustomerID] = row
	}

	// Bank 1 客户取 Bank 1 侧的值，Bank 2 客户取 Bank 2 侧的值
	if byID["B1_C1"].Values[col] != "111" {
		t.Fatalf("B1_C1 = %v", byID["B1_C1"].Values)
	}
	if byID["B1_C2"].Values[col] != "222" {
		t.Fatalf("B1_C2 = %v", byID["B1_C2"].Values)
	}
	if byID["B2_K1"].Values[col] != "333" {
		t.Fatalf("B2_K1 = %v", byID["B2_K1"].Values)
	}
}

func TestFuse_MaxCustomersCap(t *testing.T) {
	t.Parallel()
	fuser, _, _ := newTestFuser(t)

	matched := []model.MatchPair{
		{
			Bank1: model.MatchSide{Category: "Customer", Schema: "name"},
			Bank2: model.MatchSide{Category: "Customer", Schema: "fullName"},
		},
	}

	table, report, err := fuser.Fuse(matched, FuseOptions{MaxCustomers: 1})
	if err != nil {
		t.Fatalf("fuse: %v", err)
	}
	if report.Bank1Customers != 1 || report.Bank2Customers != 1 {
		t.Fatalf("report = %+v", report)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(table.Rows))
	}
	if table.Rows[0].CustomerID != "B1_C1" {
		t.Fatalf("first row = %q, cap must keep file order", table.Rows[0].CustomerID)
	}
}

func TestFuse_MissingCategoryWarnsAndStaysEmpty(t *testing.T) {
	t.Parallel()
	fuser, _, _ := newTestFuser(t)

	matched := []model.MatchPair{
		{
			Bank1: model.MatchSide{Category: "Guarantee", Schema: "amount"},
			Bank2: model.MatchSide{Category: "Guarantee", Schema: "amount"},
		},
	}

	table, report, err := fuser.Fuse(matched, FuseOptions{})
	if err != nil {
		t.Fatalf("fuse: %v", err)
	}

	if report.EmptyPairs != 1 {
		t.Fatalf("empty pairs = %d, want 1", report.EmptyPairs)
	}
	found := false
	for _, w := range report.Warnings {
		if strings.Contains(w, "Guarantee") {
			found = true
		}
	}
	if !found {
		t.Fatalf("warnings = %v, want one naming the category", report.Warnings)
	}

	col := model.CombinedColumnName(matched[0])
	for _, row := range table.Rows {
		if _, ok := row.Values[col]; ok {
			t.Fatalf("row %s must not carry a value for the empty pair", row.CustomerID)
		}
	}
}

func TestFuse_Bank2SurrogateKeyResolution(t *testing.T) {
	t.Parallel()
	fuser, _, bank2Dir := newTestFuser(t)

	// 账户表用 accountHolderKey 指向客户 encodedKey，需要翻译
	writeFile(t, bank2Dir, "DepositAccounts.csv",
		"accountHolderKey,balance\n8a001,5000\n")

	matched := []model.MatchPair{
		{
			Bank1: model.MatchSide{Category: "Customer", Schema: "name"},
			Bank2: model.MatchSide{Category: "Deposit Accounts", Schema: "balance"},
		},
	}

	table, _, err := fuser.Fuse(matched, FuseOptions{})
	if err != nil {
		t.Fatalf("fuse: %v", err)
	}

	col := model.CombinedColumnName(matched[0])
	for _, row := range table.Rows {
		if row.CustomerID == "B2_K1" {
			if row.Values[col] != "5000" {
				t.Fatalf("B2_K1 = %v, surrogate key not resolved", row.Values)
			}
			return
		}
	}
	t.Fatal("B2_K1 row missing")
}
