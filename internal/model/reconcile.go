package model

// MatchSide 匹配对中一侧的 schema 标识
type MatchSide struct {
	Category string `json:"category"`
	Schema   string `json:"schema"`
}

// Key 与 SchemaEntry.Key 同构
func (s MatchSide) Key() string {
	return s.Category + "/" + s.Schema
}

// MatchPair Oracle 断言的一组对应关系（每侧各一个条目）
type MatchPair struct {
	Bank1 MatchSide `json:"bank1"`
	Bank2 MatchSide `json:"bank2"`
}

// UnmatchedSchema 未匹配条目
type UnmatchedSchema struct {
	Schema      string            `json:"schema"`
	Category    string            `json:"category"`
	Description string            `json:"description"`
	Record      map[string]string `json:"data"`
}

// Statistics 匹配统计
type Statistics struct {
	TotalMatched        int `json:"total_matched"`
	TotalUnmatchedBank1 int `json:"total_unmatched_bank1"`
	TotalUnmatchedBank2 int `json:"total_unmatched_bank2"`
	TotalSchemas        int `json:"total_schemas"`
}

// ReconciliationResult 一次解析/对账的完整结果，生成后不再修改
type ReconciliationResult struct {
	Matched        []MatchPair       `json:"matched_schemas"`
	UnmatchedBank1 []UnmatchedSchema `json:"unmatched_bank1"`
	UnmatchedBank2 []UnmatchedSchema `json:"unmatched_bank2"`
	Statistics     Statistics        `json:"statistics"`
	Warnings       []string          `json:"warnings,omitempty"`
}

// Unmatched 按银行取未匹配列表
func (r *ReconciliationResult) Unmatched(bank Bank) []UnmatchedSchema {
	if bank == Bank1 {
		return r.UnmatchedBank1
	}
	return r.UnmatchedBank2
}

// RecomputeStatistics 重算统计字段
func (r *ReconciliationResult) RecomputeStatistics() {
	r.Statistics = Statistics{
		TotalMatched:        len(r.Matched),
		TotalUnmatchedBank1: len(r.UnmatchedBank1),
		TotalUnmatchedBank2: len(r.UnmatchedBank2),
		TotalSchemas:        len(r.Matched) + len(r.UnmatchedBank1) + len(r.UnmatchedBank2),
	}
}
