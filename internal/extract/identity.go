package extract

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/Leo-Zh9/bridgette/internal/catalog"
	"github.com/Leo-Zh9/bridgette/internal/tabular"
)

// IdentityResolver Bank 2 内部代理键到对外客户 ID 的翻译表
//
// 客户表同时带 id 与 encodedKey 两列；账户表的 accountHolderKey、
// 地址表的 parentKey、证件表的 clientKey 都取值于客户 encodedKey 空间，
// 可以直接查表。交易表的 parentAccountKey 指向账户而非客户，当前设计
// 仍直接查同一张表，仅在外键值恰好落在客户键空间时才命中，属已知局限。
type IdentityResolver struct {
	surrogateToCustomer map[string]string
}

// NewIdentityResolver 扫描 Bank 2 的客户类文件构建翻译表
func NewIdentityResolver(index *catalog.Index) (*IdentityResolver, error) {
	files, err := index.FindFiles("customer")
	if err != nil {
		return nil, fmt.Errorf("failed to locate customer files: %w", err)
	}

	r := &IdentityResolver{surrogateToCustomer: make(map[string]string)}
	for _, path := range files {
		if err := r.scanCustomerFile(path); err != nil {
			// 单个文件失败不致命，记录后继续
			log.Printf("[WARN] 读取客户文件失败 %s: %v", filepath.Base(path), err)
		}
	}
	return r, nil
}

func (r *IdentityResolver) scanCustomerFile(path string) error {
	table, err := tabular.ReadTable(path)
	if err != nil {
		return err
	}

	idIdx := table.ColumnIndex("id")
	keyIdx := table.ColumnIndex("encodedKey")
	if idIdx < 0 || keyIdx < 0 {
		return fmt.Errorf("%w: id/encodedKey", ErrColumnNotFound)
	}

	for _, row := range table.Rows {
		id := table.Cell(row, idIdx)
		key := table.Cell(row, keyIdx)
		if id == "" || key == "" {
			continue
		}
		r.surrogateToCustomer[key] = id
	}
	return nil
}

// Resolve 把代理键翻译为客户 ID
func (r *IdentityResolver) Resolve(surrogateKey string) (string, bool) {
	id, ok := r.surrogateToCustomer[surrogateKey]
	return id, ok
}

// ResolveMap 把以代理键为键的取值映射翻译到客户 ID 空间
// 翻译不了的键丢弃。
func (r *IdentityResolver) ResolveMap(raw map[string]string) map[string]string {
	resolved := make(map[string]string, len(raw))
	for key, value := range raw {
		if id, ok := r.surrogateToCustomer[key]; ok {
			resolved[id] = value
		}
	}
	return resolved
}

// Size 翻译表条目数
func (r *IdentityResolver) Size() int {
	return len(r.surrogateToCustomer)
}
