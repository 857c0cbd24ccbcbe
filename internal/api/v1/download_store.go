package v1

import (
	"crypto/rand"
	"encoding/base64"
	"strings"
	"sync"
	"time"
)

// artifactDownload 一次性下载条目，签发时就定好响应头所需的信息
type artifactDownload struct {
	filePath    string
	name        string
	contentType string
	expiresAt   time.Time
}

type artifactDownloadStore struct {
	mu    sync.Mutex
	items map[string]artifactDownload
}

func newArtifactDownloadStore() *artifactDownloadStore {
	return &artifactDownloadStore{
		items: make(map[string]artifactDownload),
	}
}

func (s *artifactDownloadStore) put(filePath, name string, ttl time.Duration) (token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked(time.Now())

	token = newRandomToken(24)
	s.items[token] = artifactDownload{
		filePath:    filePath,
		name:        name,
		contentType: artifactContentType(name),
		expiresAt:   time.Now().Add(ttl),
	}
	return token
}

// take 取出并销毁条目，令牌只能用一次
func (s *artifactDownloadStore) take(token string) (artifactDownload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked(time.Now())

	v, ok := s.items[token]
	if !ok {
		return artifactDownload{}, false
	}
	delete(s.items, token)
	if time.Now().After(v.expiresAt) {
		return artifactDownload{}, false
	}
	return v, true
}

func (s *artifactDownloadStore) purgeExpiredLocked(now time.Time) {
	for k, v := range s.items {
		if now.After(v.expiresAt) {
			delete(s.items, k)
		}
	}
}

func artifactContentType(name string) string {
	if strings.HasSuffix(name, ".xlsx") {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/json"
}

func newRandomToken(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
