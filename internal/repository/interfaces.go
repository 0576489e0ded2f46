// Package repository はユーザーデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/walletauth/internal/model"
)

// ErrDuplicateSubject は同一google_subのユーザーが既に存在することを表す。
// ストレージ層の一意制約違反をこのエラーに正規化し、呼び出し側は
// 既存レコードの再検索にフォールバックする（ハードエラーにしない）。
var ErrDuplicateSubject = errors.New("user with this google_sub already exists")

// UserRepository はユーザーデータの永続化インターフェース。
// 起動時に実装（PostgreSQL / インメモリ）を選択して注入する。
type UserRepository interface {
	// FindByGoogleSub はgoogle_subでユーザーを検索する。見つからない場合はnilを返す。
	FindByGoogleSub(ctx context.Context, sub string) (*model.User, error)

	// Create は新規ユーザーを作成する。google_subの一意制約に違反した場合は
	// ErrDuplicateSubjectを返す。同一subjectへの同時呼び出しに対して安全で、
	// 衝突した側は既存レコードを壊さない。
	Create(ctx context.Context, sub, email string) (*model.User, error)

	// FindByID は内部IDでユーザーを検索する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)
}
