package match

import (
	"strings"
	"testing"

	"github.com/Leo-Zh9/bridgette/internal/model"
)

func TestValidate_DuplicateClaimsWarnOnce(t *testing.T) {
	t.Parallel()
	result := &model.ReconciliationResult{
		Matched: []model.MatchPair{
			{Bank1: model.MatchSide{Category: "Customer", Schema: "name"}, Bank2: model.MatchSide{Category: "Client", Schema: "fullName"}},
			{Bank1: model.MatchSide{Category: "Customer", Schema: "name"}, Bank2: model.MatchSide{Category: "Client", Schema: "displayName"}},
		},
	}

	warnings := Validate(result)
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly one", warnings)
	}
	if !strings.Contains(warnings[0], "Customer/name") {
		t.Fatalf("warning = %q", warnings[0])
	}
}

func TestValidate_EmptySchemaSide(t *testing.T) {
	t.Parallel()
	result := &model.ReconciliationResult{
		Matched: []model.MatchPair{
			{Bank1: model.MatchSide{Category: "Customer", Schema: "name"}, Bank2: model.MatchSide{Category: "Client"}},
		},
	}

	warnings := Validate(result)
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v", warnings)
	}
}

func TestCheckCompleteness(t *testing.T) {
	t.Parallel()
	corpus1, corpus2 := testCorpora()

	result := AllUnmatched(corpus1, corpus2)
	if err := CheckCompleteness(result, corpus1, corpus2); err != nil {
		t.Fatalf("completeness on degraded result: %v", err)
	}

	// 丢掉一条未匹配后必须报错
	broken := &model.ReconciliationResult{
		UnmatchedBank1: result.UnmatchedBank1[1:],
		UnmatchedBank2: result.UnmatchedBank2,
	}
	if err := CheckCompleteness(broken, corpus1, corpus2); err == nil {
		t.Fatal("expected completeness violation")
	}
}

func TestCheckCompleteness_OneToManyCountsDistinct(t *testing.T) {
	t.Parallel()
	corpus1, corpus2 := testCorpora()

	// Customer/name 同时对上 Bank 2 的两条，Bank 2 两条都算已匹配
	result := &model.ReconciliationResult{
		Matched: []model.MatchPair{
			{Bank1: model.MatchSide{Category: "Customer", Schema: "name"}, Bank2: model.MatchSide{Category: "Client", Schema: "fullName"}},
			{Bank1: model.MatchSide{Category: "Customer", Schema: "name"}, Bank2: model.MatchSide{Category: "Client", Schema: "emailAddress"}},
		},
		UnmatchedBank1: []model.UnmatchedSchema{
			{Schema: "email", Category: "Customer"},
			{Schema: "phone", Category: "Customer"},
		},
	}
	if err := CheckCompleteness(result, corpus1, corpus2); err != nil {
		t.Fatalf("completeness: %v", err)
	}
}
