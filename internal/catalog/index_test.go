package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func seedDataDir(t *testing.T, names []string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("id\n1\n"), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func baseNames(paths []string) []string {
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	return names
}

func TestFindFiles_ExcludesLockFiles(t *testing.T) {
	t.Parallel()
	dir := seedDataDir(t, []string{"Customers.csv", "~$Customers.csv"})

	files, err := NewIndex(dir).FindFiles("customer")
	if err != nil {
		t.Fatalf("find files: %v", err)
	}
	if got := baseNames(files); len(got) != 1 || got[0] != "Customers.csv" {
		t.Fatalf("files = %v", got)
	}
}

func TestFindFiles_CompoundCategoryDisambiguation(t *testing.T) {
	t.Parallel()
	dir := seedDataDir(t, []string{
		"Customers.csv",
		"LoanAccounts.csv",
		"LoanAccountTransactions.csv",
		"DepositAccounts.csv",
		"DepositAccountTransactions.csv",
	})
	idx := NewIndex(dir)

	cases := []struct {
		category string
		want     []string
	}{
		{"Loan Accounts", []string{"LoanAccounts.csv"}},
		{"Loan Account Transactions", []string{"LoanAccountTransactions.csv"}},
		{"Deposit Accounts", []string{"DepositAccounts.csv"}},
		{"Deposit Account Transactions", []string{"DepositAccountTransactions.csv"}},
	}

	for _, tc := range cases {
		files, err := idx.FindFiles(tc.category)
		if err != nil {
			t.Fatalf("find files %q: %v", tc.category, err)
		}
		got := baseNames(files)
		if len(got) != len(tc.want) {
			t.Fatalf("category %q: files = %v, want %v", tc.category, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("category %q: files = %v, want %v", tc.category, got, tc.want)
			}
		}
	}
}

func TestFindFiles_MultiWordFallsBackToAnyWord(t *testing.T) {
	t.Parallel()
	dir := seedDataDir(t, []string{"FixedTermDeposits.csv"})

	// 整名子串不命中时，多词类别按任一词匹配
	files, err := NewIndex(dir).FindFiles("term deposits")
	if err != nil {
		t.Fatalf("find files: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("files = %v", baseNames(files))
	}
}

func TestFindFiles_NoMatches(t *testing.T) {
	t.Parallel()
	dir := seedDataDir(t, []string{"Customers.csv"})

	files, err := NewIndex(dir).FindFiles("guarantee")
	if err != nil {
		t.Fatalf("find files: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("files = %v, want none", baseNames(files))
	}
}
