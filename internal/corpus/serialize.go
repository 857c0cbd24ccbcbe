package corpus

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Leo-Zh9/bridgette/internal/model"
)

const (
	// MaxPayloadLength 两份语料序列化后的总长度预算（字符）
	MaxPayloadLength = 100000
	// promptReserve 留给指令文本的空间
	promptReserve = 2000
	// TruncationMarker 截断标记
	TruncationMarker = "\n... (truncated due to length)"
)

// Serialize 把语料序列化为按类别分组的 JSON 文本，类别保持导出文件里的顺序
func Serialize(c *model.SchemaCorpus) (string, error) {
	var body bytes.Buffer
	body.WriteByte('{')
	for i, cat := range c.Categories {
		if i > 0 {
			body.WriteByte(',')
		}
		key, err := json.Marshal(cat)
		if err != nil {
			return "", fmt.Errorf("failed to serialize category %q: %w", cat, err)
		}
		body.Write(key)
		body.WriteByte(':')

		entries := c.Entries[cat]
		if entries == nil {
			entries = []model.SchemaEntry{}
		}
		value, err := json.Marshal(entries)
		if err != nil {
			return "", fmt.Errorf("failed to serialize category %q: %w", cat, err)
		}
		body.Write(value)
	}
	body.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, body.Bytes(), "", "  "); err != nil {
		return "", fmt.Errorf("failed to serialize corpus: %w", err)
	}
	return out.String(), nil
}

// TruncatePayloads 对两份序列化语料应用长度预算
// 总长超预算时，可用空间在两份之间平分并各自硬截断；
// 只有一份时单独截断到预算。返回截断后的文本和是否发生截断。
func TruncatePayloads(json1, json2 string) (string, string, bool) {
	total := len(json1) + len(json2)
	if total <= MaxPayloadLength {
		return json1, json2, false
	}

	if json2 == "" {
		return json1[:MaxPayloadLength] + TruncationMarker, "", true
	}

	perFile := (MaxPayloadLength - promptReserve) / 2
	if len(json1) > perFile {
		json1 = json1[:perFile] + TruncationMarker
	}
	if len(json2) > perFile {
		json2 = json2[:perFile] + TruncationMarker
	}
	return json1, json2, true
}
