package corpus

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/Leo-Zh9/bridgette/internal/model"
)

func TestSerialize_GroupsByCategory(t *testing.T) {
	t.Parallel()
	c := &model.SchemaCorpus{
		Bank:       model.Bank1,
		Categories: []string{"Customer"},
		Entries: map[string][]model.SchemaEntry{
			"Customer": {
				{Category: "Customer", Name: "fullName", Description: "客户全名"},
			},
		},
		Total: 1,
	}

	out, err := Serialize(c)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	var doc map[string][]model.SchemaEntry
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("output is not valid json: %v", err)
	}
	if len(doc["Customer"]) != 1 || doc["Customer"][0].Name != "fullName" {
		t.Fatalf("unexpected document: %v", doc)
	}
}

func TestSerialize_PreservesCategoryOrder(t *testing.T) {
	t.Parallel()
	c := &model.SchemaCorpus{
		Bank:       model.Bank2,
		Categories: []string{"Transaction", "Deposit", "Customer"},
		Entries: map[string][]model.SchemaEntry{
			"Transaction": {{Category: "Transaction", Name: "amount"}},
			"Deposit":     {{Category: "Deposit", Name: "balance"}},
			"Customer":    {{Category: "Customer", Name: "fullName"}},
		},
		Total: 3,
	}

	out, err := Serialize(c)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	// 类别按导出顺序出现，不是字母序
	posTransaction := strings.Index(out, `"Transaction"`)
	posDeposit := strings.Index(out, `"Deposit"`)
	posCustomer := strings.Index(out, `"Customer"`)
	if posTransaction < 0 || posDeposit < 0 || posCustomer < 0 {
		t.Fatalf("missing category in output: %s", out)
	}
	if !(posTransaction < posDeposit && posDeposit < posCustomer) {
		t.Fatalf("category order = %d/%d/%d", posTransaction, posDeposit, posCustomer)
	}

	var doc map[string][]model.SchemaEntry
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("output is not valid json: %v", err)
	}
	if len(doc) != 3 {
		t.Fatalf("document = %v", doc)
	}
}

func TestTruncatePayloads_UnderBudget(t *testing.T) {
	t.Parallel()
	json1, json2, truncated := TruncatePayloads("short1", "short2")
	if truncated {
		t.Fatal("payloads under budget should not be truncated")
	}
	if json1 != "short1" || json2 != "short2" {
		t.Fatal("payloads under budget must pass through unchanged")
	}
}

func TestTruncatePayloads_SplitsBudgetEvenly(t *testing.T) {
	t.Parallel()
	big1 := strings.Repeat("a", 80000)
	big2 := strings.Repeat("b", 80000)

	out1, out2, truncated := TruncatePayloads(big1, big2)
	if !truncated {
		t.Fatal("expected truncation")
	}

	perFile := (MaxPayloadLength - 2000) / 2
	want := perFile + len(TruncationMarker)
	if len(out1) != want || len(out2) != want {
		t.Fatalf("lengths = %d/%d, want %d", len(out1), len(out2), want)
	}
	if !strings.HasSuffix(out1, TruncationMarker) || !strings.HasSuffix(out2, TruncationMarker) {
		t.Fatal("truncated payloads must end with the marker")
	}
}

func TestTruncatePayloads_SingleCorpusGetsFullBudget(t *testing.T) {
	t.Parallel()
	big := strings.Repeat("a", MaxPayloadLength+500)

	out1, out2, truncated := TruncatePayloads(big, "")
	if !truncated {
		t.Fatal("expected truncation")
	}
	if out2 != "" {
		t.Fatal("second payload must stay empty")
	}
	if len(out1) != MaxPayloadLength+len(TruncationMarker) {
		t.Fatalf("length = %d", len(out1))
	}
}

func TestTruncatePayloads_ShortSideKeptWhole(t *testing.T) {
	t.Parallel()
	big := strings.Repeat("a", MaxPayloadLength)
	small := "tiny"

	out1, out2, truncated := TruncatePayloads(big, small)
	if !truncated {
		t.Fatal("expected truncation")
	}
	if out2 != small {
		t.Fatalf("short payload changed: %q", out2)
	}
	if !strings.HasSuffix(out1, TruncationMarker) {
		t.Fatal("long payload must be truncated")
	}
}
