package model

// Bank 数据来源银行标识
type Bank string

const (
	Bank1 Bank = "bank1"
	Bank2 Bank = "bank2"
)

// Label 银行显示名（与 Oracle 应答中的标记一致）
func (b Bank) Label() string {
	switch b {
	case Bank1:
		return "Bank 1"
	case Bank2:
		return "Bank 2"
	}
	return string(b)
}

// Prefix 合并表中客户 ID 的命名空间前缀
func (b Bank) Prefix() string {
	switch b {
	case Bank1:
		return "B1_"
	case Bank2:
		return "B2_"
	}
	return string(b) + "_"
}

// Other 对端银行
func (b Bank) Other() Bank {
	if b == Bank1 {
		return Bank2
	}
	return Bank1
}

// SchemaEntry 一个 schema 条目（类别内的一个命名字段）
type SchemaEntry struct {
	Category    string            `json:"category"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Record      map[string]string `json:"data,omitempty"` // 导出表中的原始行
}

// Key 条目标识，(category, name) 唯一
func (e SchemaEntry) Key() string {
	return e.Category + "/" + e.Name
}

// SchemaCorpus 一家银行的全部 schema 条目
// 由 schema 导出文件一次性构建，之后只读。
type SchemaCorpus struct {
	Bank       Bank
	Categories []string                 // 保持导出文件中的类别顺序
	Entries    map[string][]SchemaEntry // category -> 条目
	Total      int
}

// All 按类别顺序展开全部条目
func (c *SchemaCorpus) All() []SchemaEntry {
	entries := make([]SchemaEntry, 0, c.Total)
	for _, cat := range c.Categories {
		entries = append(entries, c.Entries[cat]...)
	}
	return entries
}

// EnumerationResult schema 计数结果
type EnumerationResult struct {
	FileName      string         `json:"file_name"`
	TotalSchemas  int            `json:"total_schemas"`
	SectionCounts map[string]int `json:"sheet_breakdown"`
	SectionNumber int            `json:"number_of_sheets"`
}
