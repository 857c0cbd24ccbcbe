package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Index 类别到数据文件的索引（只做目录列举，无副作用）
type Index struct {
	dir string
}

// NewIndex 创建一家银行数据目录的索引
func NewIndex(dir string) *Index {
	return &Index{dir: dir}
}

// compoundRule 复合类别消歧规则
// 短类别名是长类别名前缀时（如 "Loan Accounts" 与 "Loan Account
// Transactions"），仅靠子串匹配会把长类别的文件吸进短类别，
// 需要按 token 共现/排除收紧。
type compoundRule struct {
	when    []string // 类别名需包含的词
	whenNot []string // 类别名需不包含的词
	require []string // 文件名必须包含的 token
	exclude []string // 文件名必须不包含的 token
}

// 规则按序匹配，命中第一条即生效
var compoundRules = []compoundRule{
	{when: []string{"loan", "account"}, whenNot: []string{"transaction"}, require: []string{"loan", "account"}, exclude: []string{"transaction"}},
	{when: []string{"loan", "account", "transaction"}, require: []string{"loan", "transaction"}},
	{when: []string{"fixed", "term", "account"}, whenNot: []string{"transaction"}, require: []string{"fixedterm", "account"}, exclude: []string{"transaction"}},
	{when: []string{"fixed", "term", "account", "transaction"}, require: []string{"fixedterm", "transaction"}},
	{when: []string{"cursav", "account"}, whenNot: []string{"transaction"}, require: []string{"cursav", "account"}, exclude: []string{"transaction"}},
	{when: []string{"cursav", "account", "transaction"}, require: []string{"cursav", "transaction"}},
	{when: []string{"deposit", "account"}, whenNot: []string{"transaction"}, require: []string{"deposit", "account"}, exclude: []string{"transaction"}},
	{when: []string{"deposit", "account", "transaction"}, require: []string{"deposit", "transaction"}},
}

func (r compoundRule) applies(category string) bool {
	for _, w := range r.when {
		if !strings.Contains(category, w) {
			return false
		}
	}
	for _, w := range r.whenNot {
		if strings.Contains(category, w) {
			return false
		}
	}
	return true
}

func (r compoundRule) accepts(filename string) bool {
	for _, token := range r.require {
		if !strings.Contains(filename, token) {
			return false
		}
	}
	for _, token := range r.exclude {
		if strings.Contains(filename, token) {
			return false
		}
	}
	return true
}

// FindFiles 返回文件名被判定属于该类别的文件路径（按目录序）
func (idx *Index) FindFiles(category string) ([]string, error) {
	entries, err := os.ReadDir(idx.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list data dir: %w", err)
	}

	categoryLower := strings.ToLower(category)
	var matches []string

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		// Office 临时锁文件
		if strings.HasPrefix(name, "~$") {
			continue
		}

		nameLower := strings.ToLower(name)
		if matchesCategory(nameLower, categoryLower) {
			matches = append(matches, filepath.Join(idx.dir, name))
		}
	}

	// 复合类别收紧
	for _, rule := range compoundRules {
		if !rule.applies(categoryLower) {
			continue
		}
		var filtered []string
		for _, path := range matches {
			if rule.accepts(strings.ToLower(filepath.Base(path))) {
				filtered = append(filtered, path)
			}
		}
		matches = filtered
		break
	}

	return matches, nil
}

// matchesCategory 基础匹配：整名子串优先，多词类别的任一词次之
func matchesCategory(filenameLower, categoryLower string) bool {
	if strings.Contains(filenameLower, categoryLower) {
		return true
	}
	if strings.Contains(categoryLower, " ") {
		for _, word := range strings.Fields(categoryLower) {
			if strings.Contains(filenameLower, word) {
				return true
			}
		}
	}
	return false
}
