package match

import (
	"fmt"

	"github.com/Leo-Zh9/bridgette/internal/model"
)

// Validate 校验匹配结果的一致性，返回告警列表
//
// 同一条目被多个匹配对认领时只告警不剔除：Oracle 的提议原样入账，
// 由使用方自行取舍（一对多匹配在语义上是允许的）。
func Validate(result *model.ReconciliationResult) []string {
	var warnings []string

	claimed1 := make(map[string]int)
	claimed2 := make(map[string]int)
	for _, pair := range result.Matched {
		claimed1[pair.Bank1.Key()]++
		claimed2[pair.Bank2.Key()]++
	}

	for _, pair := range result.Matched {
		if key := pair.Bank1.Key(); claimed1[key] > 1 {
			warnings = append(warnings, fmt.Sprintf("Bank 1 条目 %s 被 %d 个匹配对认领", key, claimed1[key]))
			claimed1[key] = 1 // 每个条目只告警一次
		}
		if key := pair.Bank2.Key(); claimed2[key] > 1 {
			warnings = append(warnings, fmt.Sprintf("Bank 2 条目 %s 被 %d 个匹配对认领", key, claimed2[key]))
			claimed2[key] = 1
		}
	}

	for i, pair := range result.Matched {
		if pair.Bank1.Schema == "" || pair.Bank2.Schema == "" {
			warnings = append(warnings, fmt.Sprintf("第 %d 个匹配对缺少一侧的 schema 名", i+1))
		}
	}

	return warnings
}

// CheckCompleteness 校验完整性不变量
// 每侧：匹配数 + 未匹配数 == 语料总数。不满足说明解析或兜底有缺陷。
func CheckCompleteness(result *model.ReconciliationResult, corpus1, corpus2 *model.SchemaCorpus) error {
	// 一对多匹配会让同一条目出现在多个匹配对中，按去重后的认领数核对
	distinct1 := make(map[string]bool)
	distinct2 := make(map[string]bool)
	for _, pair := range result.Matched {
		distinct1[pair.Bank1.Key()] = true
		distinct2[pair.Bank2.Key()] = true
	}

	if got, want := len(distinct1)+len(result.UnmatchedBank1), corpus1.Total; got != want {
		return fmt.Errorf("bank 1 completeness violated: matched+unmatched=%d corpus=%d", got, want)
	}
	if got, want := len(distinct2)+len(result.UnmatchedBank2), corpus2.Total; got != want {
		return fmt.Errorf("bank 2 completeness violated: matched+unmatched=%d corpus=%d", got, want)
	}
	return nil
}
