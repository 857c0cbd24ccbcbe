package extract

import (
	"path/filepath"
	"strings"

	"github.com/Leo-Zh9/bridgette/internal/model"
)

// roleRule 按文件名关键词选择标识列
type roleRule struct {
	keyword  string
	idColumn string
}

// Bank 2 的表按记录类型使用不同的内部键列，规则按序命中第一条
var bank2RoleRules = []roleRule{
	{keyword: "customer", idColumn: "id"},
	{keyword: "address", idColumn: "parentKey"},
	{keyword: "identif", idColumn: "clientKey"},
	{keyword: "transaction", idColumn: "parentAccountKey"},
	{keyword: "account", idColumn: "accountHolderKey"},
}

// Bank 1 的表统一用 customerId，交易表用 accountId
var bank1RoleRules = []roleRule{
	{keyword: "transaction", idColumn: "accountId"},
}

// 无规则命中时的缺省标识列
const (
	bank1DefaultIDColumn = "customerId"
	bank2DefaultIDColumn = "id"
)

// IDColumnFor 返回某银行某数据文件应使用的标识列名
func IDColumnFor(bank model.Bank, path string) string {
	filename := strings.ToLower(filepath.Base(path))

	rules := bank1RoleRules
	fallback := bank1DefaultIDColumn
	if bank == model.Bank2 {
		rules = bank2RoleRules
		fallback = bank2DefaultIDColumn
	}

	for _, rule := range rules {
		if strings.Contains(filename, rule.keyword) {
			return rule.idColumn
		}
	}
	return fallback
}

// NeedsIdentityResolution 该标识列的取值是否为内部代理键（需翻译成客户 ID）
func NeedsIdentityResolution(idColumn string) bool {
	switch idColumn {
	case "accountHolderKey", "parentAccountKey", "parentKey", "clientKey":
		return true
	}
	return false
}
