package match

import (
	"errors"
	"testing"

	"github.com/Leo-Zh9/bridgette/internal/model"
)

func testCorpora() (*model.SchemaCorpus, *model.SchemaCorpus) {
	corpus1 := &model.SchemaCorpus{
		Bank:       model.Bank1,
		Categories: []string{"Customer"},
		Entries: map[string][]model.SchemaEntry{
			"Customer": {
				{Category: "Customer", Name: "name", Description: "客户姓名"},
				{Category: "Customer", Name: "email", Description: "电子邮箱"},
				{Category: "Customer", Name: "phone", Description: "联系电话"},
			},
		},
		Total: 3,
	}
	corpus2 := &model.SchemaCorpus{
		Bank:       model.Bank2,
		Categories: []string{"Client"},
		Entries: map[string][]model.SchemaEntry{
			"Client": {
				{Category: "Client", Name: "fullName", Description: "客户全名"},
				{Category: "Client", Name: "emailAddress", Description: "邮箱地址"},
			},
		},
		Total: 2,
	}
	return corpus1, corpus2
}

func TestParse_WellFormedResponse(t *testing.T) {
	t.Parallel()
	corpus1, corpus2 := testCorpora()
	response := `Matched schemas:
(Bank 1: Customer/name, Bank 2: Client/fullName)
(Bank 1: Customer/email, Bank 2: Client/emailAddress)

List of Bank 1 schemas unmatched in Bank 2:
(Customer/phone)

List of Bank 2 schemas unmatched in Bank 1:
`

	result, err := NewParser(corpus1, corpus2).Parse(response)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if len(result.Matched) != 2 {
		t.Fatalf("matched = %d, want 2", len(result.Matched))
	}
	first := result.Matched[0]
	if first.Bank1.Category != "Customer" || first.Bank1.Schema != "name" {
		t.Fatalf("bank1 side = %+v", first.Bank1)
	}
	if first.Bank2.Category != "Client" || first.Bank2.Schema != "fullName" {
		t.Fatalf("bank2 side = %+v", first.Bank2)
	}

	if len(result.UnmatchedBank1) != 1 || result.UnmatchedBank1[0].Schema != "phone" {
		t.Fatalf("unmatched bank1 = %+v", result.UnmatchedBank1)
	}
	// Bank 2 列表为空时按语料差集兜底：两条都已匹配，结果为空
	if len(result.UnmatchedBank2) != 0 {
		t.Fatalf("unmatched bank2 = %+v", result.UnmatchedBank2)
	}

	stats := result.Statistics
	if stats.TotalMatched != 2 || stats.TotalUnmatchedBank1 != 1 || stats.TotalUnmatchedBank2 != 0 {
		t.Fatalf("statistics = %+v", stats)
	}
}

func TestParse_MissingHeadersFallsBackToCorpusDiff(t *testing.T) {
	t.Parallel()
	corpus1, corpus2 := testCorpora()
	// 只有匹配行，没有任何未匹配标题
	response := "(Bank 1: Customer/name, Bank 2: Client/fullName)"

	result, err := NewParser(corpus1, corpus2).Parse(response)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if len(result.UnmatchedBank1) != 2 {
		t.Fatalf("unmatched bank1 = %+v", result.UnmatchedBank1)
	}
	if len(result.UnmatchedBank2) != 1 || result.UnmatchedBank2[0].Schema != "emailAddress" {
		t.Fatalf("unmatched bank2 = %+v", result.UnmatchedBank2)
	}
	// 兜底条目要带回语料中的描述
	if result.UnmatchedBank2[0].Description != "邮箱地址" {
		t.Fatalf("description = %q", result.UnmatchedBank2[0].Description)
	}
}

func TestParse_UnmatchedLineWithoutSlash(t *testing.T) {
	t.Parallel()
	corpus1, corpus2 := testCorpora()
	response := `(Bank 1: Customer/name, Bank 2: Client/fullName)
List of Bank 1 schemas unmatched in Bank 2:
(phone)
(Bank 1: email)
List of Bank 2 schemas unmatched in Bank 1:
(Client/emailAddress)
`

	result, err := NewParser(corpus1, corpus2).Parse(response)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if len(result.UnmatchedBank1) != 2 {
		t.Fatalf("unmatched bank1 = %+v", result.UnmatchedBank1)
	}
	// 无斜杠的条目类别记 Unknown
	if result.UnmatchedBank1[0].Category != "Unknown" || result.UnmatchedBank1[0].Schema != "phone" {
		t.Fatalf("first unmatched = %+v", result.UnmatchedBank1[0])
	}
	// 带来源标记的条目去掉标记
	if result.UnmatchedBank1[1].Schema != "email" {
		t.Fatalf("second unmatched = %+v", result.UnmatchedBank1[1])
	}
	if result.UnmatchedBank2[0].Category != "Client" {
		t.Fatalf("unmatched bank2 = %+v", result.UnmatchedBank2[0])
	}
}

func TestParse_EmptyResponse(t *testing.T) {
	t.Parallel()
	corpus1, corpus2 := testCorpora()
	_, err := NewParser(corpus1, corpus2).Parse("   \n  ")
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("err = %v, want ErrEmptyResponse", err)
	}
}

func TestParse_NoMatchedLines(t *testing.T) {
	t.Parallel()
	corpus1, corpus2 := testCorpora()
	_, err := NewParser(corpus1, corpus2).Parse("The schemas have nothing in common.")
	if !errors.Is(err, ErrNoMatches) {
		t.Fatalf("err = %v, want ErrNoMatches", err)
	}
}

func TestAllUnmatched(t *testing.T) {
	t.Parallel()
	corpus1, corpus2 := testCorpora()
	result := AllUnmatched(corpus1, corpus2)

	if len(result.Matched) != 0 {
		t.Fatal("degraded result must have no matches")
	}
	if len(result.UnmatchedBank1) != corpus1.Total || len(result.UnmatchedBank2) != corpus2.Total {
		t.Fatalf("unmatched = %d/%d", len(result.UnmatchedBank1), len(result.UnmatchedBank2))
	}
	if result.Statistics.TotalSchemas != corpus1.Total+corpus2.Total {
		t.Fatalf("statistics = %+v", result.Statistics)
	}
}
