package match

import (
	"errors"
	"strings"

	"github.com/Leo-Zh9/bridgette/internal/model"
)

// Oracle 应答的解析错误：这两种情况都交由上层降级为"全部未匹配"。
var (
	// ErrEmptyResponse 应答为空
	ErrEmptyResponse = errors.New("empty oracle response")
	// ErrNoMatches 应答中没有任何匹配行
	ErrNoMatches = errors.New("no matched pairs in oracle response")
)

// parseState 行扫描状态
type parseState int

const (
	stateMatched        parseState = iota // 初始：收集匹配对
	stateUnmatchedBank1                   // 已见 Bank 1 未匹配标题
	stateUnmatchedBank2                   // 已见 Bank 2 未匹配标题（终态）
)

// 标题哨兵（大小写不敏感的子串匹配）
const (
	bank1UnmatchedHeader = "list of bank 1 schemas unmatched"
	bank2UnmatchedHeader = "list of bank 2 schemas unmatched"
)

// 行内来源标记
const (
	bank1Marker = "Bank 1:"
	bank2Marker = "Bank 2:"
)

// Parser Oracle 自由文本应答的解析器
//
// 逐行状态机 + 语料差集兜底。应答文本只是推导匹配对的线索，
// 两份结构化语料才是事实来源：无论文本多不规范，未匹配集合
// 最终都能由语料差集补全。
type Parser struct {
	corpus1 *model.SchemaCorpus
	corpus2 *model.SchemaCorpus
}

// NewParser 创建解析器（两份语料用于兜底重建）
func NewParser(corpus1, corpus2 *model.SchemaCorpus) *Parser {
	return &Parser{corpus1: corpus1, corpus2: corpus2}
}

// Parse 解析应答文本
//
// 匹配行：以 "(" 开头且同时含 Bank 1/Bank 2 标记；每侧去掉标记和
// 尾部标点后按第一个 "/" 切出 类别/名称，无斜杠时整段作为名称。
// 未匹配行（处于列表状态时）：以 "(" 开头的一行是一个条目，可带
// 来源标记、可带斜杠、也可只有名称（类别记 Unknown）。
// 仅当应答为空或没有任何匹配行时返回错误。
func (p *Parser) Parse(responseText string) (*model.ReconciliationResult, error) {
	trimmed := strings.TrimSpace(responseText)
	if trimmed == "" {
		return nil, ErrEmptyResponse
	}

	result := &model.ReconciliationResult{}
	matchedKeys1 := make(map[string]bool)
	matchedKeys2 := make(map[string]bool)

	state := stateMatched
	bank1HeaderSeen := false
	bank2HeaderSeen := false

	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue // 空行不触发迁移
		}

		lower := strings.ToLower(line)
		if strings.Contains(lower, bank1UnmatchedHeader) {
			state = stateUnmatchedBank1
			bank1HeaderSeen = true
			continue
		}
		if strings.Contains(lower, bank2UnmatchedHeader) {
			state = stateUnmatchedBank2
			bank2HeaderSeen = true
			continue
		}

		if strings.HasPrefix(line, "(") && strings.Contains(line, bank1Marker) && strings.Contains(line, bank2Marker) {
			pair := parseMatchedLine(line)
			result.Matched = append(result.Matched, pair)
			matchedKeys1[pair.Bank1.Key()] = true
			matchedKeys2[pair.Bank2.Key()] = true
			continue
		}

		if strings.HasPrefix(line, "(") {
			switch state {
			case stateUnmatchedBank1:
				result.UnmatchedBank1 = append(result.UnmatchedBank1, parseUnmatchedLine(line))
			case stateUnmatchedBank2:
				result.UnmatchedBank2 = append(result.UnmatchedBank2, parseUnmatchedLine(line))
			}
		}
	}

	if len(result.Matched) == 0 {
		return nil, ErrNoMatches
	}

	// 兜底：标题缺失或列表为空时按语料差集重建
	if !bank1HeaderSeen || len(result.UnmatchedBank1) == 0 {
		result.UnmatchedBank1 = unmatchedFromCorpus(p.corpus1, matchedKeys1)
	}
	if !bank2HeaderSeen || len(result.UnmatchedBank2) == 0 {
		result.UnmatchedBank2 = unmatchedFromCorpus(p.corpus2, matchedKeys2)
	}

	result.Warnings = Validate(result)
	result.RecomputeStatistics()
	return result, nil
}

// AllUnmatched 构造"全部未匹配"的结果
// Oracle 不可用或应答不可解析时的降级路径。
func AllUnmatched(corpus1, corpus2 *model.SchemaCorpus) *model.ReconciliationResult {
	result := &model.ReconciliationResult{
		UnmatchedBank1: unmatchedFromCorpus(corpus1, nil),
		UnmatchedBank2: unmatchedFromCorpus(corpus2, nil),
	}
	result.RecomputeStatistics()
	return result
}

// parseMatchedLine 解析匹配对行
func parseMatchedLine(line string) model.MatchPair {
	bank1Part := between(line, bank1Marker, bank2Marker)
	bank2Part := after(line, bank2Marker)

	return model.MatchPair{
		Bank1: splitCategorySchema(cleanPart(bank1Part)),
		Bank2: splitCategorySchema(cleanPart(bank2Part)),
	}
}

// parseUnmatchedLine 解析未匹配条目行
func parseUnmatchedLine(line string) model.UnmatchedSchema {
	text := strings.TrimSpace(strings.Trim(line, "()"))

	// 可能带来源标记
	for _, marker := range []string{bank1Marker, bank2Marker} {
		if idx := strings.Index(text, marker); idx >= 0 {
			text = strings.TrimSpace(text[idx+len(marker):])
			break
		}
	}

	if strings.Contains(text, "/") {
		side := splitCategorySchema(text)
		return model.UnmatchedSchema{
			Schema:   side.Schema,
			Category: side.Category,
			Record:   map[string]string{},
		}
	}
	return model.UnmatchedSchema{
		Schema:   text,
		Category: "Unknown",
		Record:   map[string]string{},
	}
}

// splitCategorySchema 按第一个 "/" 切出类别与名称
// 无斜杠时整段作为名称，类别留空。
func splitCategorySchema(text string) model.MatchSide {
	if cat, schema, found := strings.Cut(text, "/"); found {
		return model.MatchSide{
			Category: strings.TrimSpace(cat),
			Schema:   strings.TrimSpace(strings.TrimRight(strings.TrimSpace(schema), ",")),
		}
	}
	return model.MatchSide{Schema: strings.TrimSpace(text)}
}

// cleanPart 去掉尾部括号/逗号与空白
func cleanPart(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimRight(text, ")")
	text = strings.TrimRight(text, ",")
	return strings.TrimSpace(text)
}

// unmatchedFromCorpus 语料差集：未被匹配对认领的条目全部标记未匹配
// 描述和原始行从语料中带出。
func unmatchedFromCorpus(corpus *model.SchemaCorpus, matchedKeys map[string]bool) []model.UnmatchedSchema {
	var unmatched []model.UnmatchedSchema
	for _, entry := range corpus.All() {
		if matchedKeys[entry.Key()] {
			continue
		}
		record := entry.Record
		if record == nil {
			record = map[string]string{}
		}
		unmatched = append(unmatched, model.UnmatchedSchema{
			Schema:      entry.Name,
			Category:    entry.Category,
			Description: entry.Description,
			Record:      record,
		})
	}
	return unmatched
}

func between(s, start, end string) string {
	i := strings.Index(s, start)
	if i < 0 {
		return ""
	}
	rest := s[i+len(start):]
	if j := strings.Index(rest, end); j >= 0 {
		return rest[:j]
	}
	return rest
}

func after(s, marker string) string {
	i := strings.Index(s, marker)
	if i < 0 {
		return ""
	}
	return s[i+len(marker):]
}
