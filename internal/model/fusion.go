package model

// CombinedColumnName 匹配对在合并表中的列名
// 形如 "Customer_name_to_Client_fullName"。
func CombinedColumnName(pair MatchPair) string {
	return pair.Bank1.Category + "_" + pair.Bank1.Schema + "_to_" + pair.Bank2.Category + "_" + pair.Bank2.Schema
}

// CombinedRecord 合并表中的一行（一个命名空间化的客户）
type CombinedRecord struct {
	CustomerID string            `json:"customer_id"` // 带 B1_/B2_ 前缀
	Bank       Bank              `json:"bank"`
	Values     map[string]string `json:"values"` // 列名 -> 取值，缺失列不出现
}

// CombinedTable 合并表（行列均有序）
type CombinedTable struct {
	Columns []string         // 不含客户 ID 列
	Rows    []CombinedRecord // 按 Bank 1 客户在前、文件内顺序
}

// FusionReport 融合过程报告
type FusionReport struct {
	Bank1Customers int      `json:"bank1_customers"`
	Bank2Customers int      `json:"bank2_customers"`
	ColumnCount    int      `json:"column_count"`
	RepairedPairs  int      `json:"repaired_pairs"` // 经外键链补救后有数据的列数
	EmptyPairs     int      `json:"empty_pairs"`    // 两侧均无数据的列数
	Warnings       []string `json:"warnings,omitempty"`
}
