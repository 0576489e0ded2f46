package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/walletauth/internal/model"
)

// MemoryUserRepo はインメモリのユーザーリポジトリ。
// テストおよびローカル開発用。PostgreSQL実装と同じ一意性保証を
// mutexで提供する。
type MemoryUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User // id -> user
	bySub map[string]string      // google_sub -> id
}

// NewMemoryUserRepo はMemoryUserRepoを生成する。
func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{
		users: make(map[string]*model.User),
		bySub: make(map[string]string),
	}
}

// FindByGoogleSub はgoogle_subでユーザーを検索する。見つからない場合はnilを返す。
func (r *MemoryUserRepo) FindByGoogleSub(_ context.Context, sub string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.bySub[sub]
	if !ok {
		return nil, nil
	}
	return copyUser(r.users[id]), nil
}

// Create は新規ユーザーを作成する。
// 同一google_subが既に存在する場合はErrDuplicateSubjectを返す。
func (r *MemoryUserRepo) Create(_ context.Context, sub, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bySub[sub]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateSubject, sub)
	}

	user := &model.User{
		ID:        uuid.New().String(),
		GoogleSub: sub,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	r.users[user.ID] = user
	r.bySub[sub] = user.ID

	return copyUser(user), nil
}

// FindByID は内部IDでユーザーを検索する。見つからない場合はnilを返す。
func (r *MemoryUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return copyUser(user), nil
}

// copyUser は内部マップのレコードを呼び出し側から隔離する。
func copyUser(u *model.User) *model.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// compile-time interface check
var _ UserRepository = (*MemoryUserRepo)(nil)
