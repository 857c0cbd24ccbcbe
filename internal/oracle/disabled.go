package oracle

import (
	"context"
	"fmt"
)

// DisabledClient 未配置 API key 时的占位客户端，始终返回不可用
type DisabledClient struct{}

// Propose 直接返回不可用错误，调用方按降级路径处理
func (DisabledClient) Propose(ctx context.Context, prompt string) (string, error) {
	return "", fmt.Errorf("%w: no API key configured", ErrUnavailable)
}
