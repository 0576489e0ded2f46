package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memoryEntry はインメモリストアの1セッション分のレコード。
type memoryEntry struct {
	userID    string
	expiresAt time.Time
}

// MemoryStore はインメモリのセッションストア。
// テストおよびローカル開発用。期限切れ判定は読み出し時に行う。
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]memoryEntry
	now      func() time.Time
}

// NewMemoryStore はMemoryStoreを生成する。
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]memoryEntry),
		now:      time.Now,
	}
}

// SetNowFunc は期限判定に使う時刻取得関数を差し替える。テスト用。
func (s *MemoryStore) SetNowFunc(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Create はセッションIDを生成し、userIDをTTL付きで保存する。
func (s *MemoryStore) Create(_ context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessionID := uuid.New().String()
	s.sessions[sessionID] = memoryEntry{
		userID:    userID,
		expiresAt: s.now().Add(s.ttl),
	}

	return sessionID, nil
}

// Restore はセッションIDに紐付くuserIDを返す。
// 期限切れのエントリは削除し、未発行と同じErrNotFoundを返す。
func (s *MemoryStore) Restore(_ context.Context, sessionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[sessionID]
	if !ok {
		return "", ErrNotFound
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.sessions, sessionID)
		return "", ErrNotFound
	}

	return entry.userID, nil
}

// compile-time interface check
var _ Store = (*MemoryStore)(nil)
