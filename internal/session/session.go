// Package session はTTL付きセッションストアを提供する。
// セッションはサーバー側で失効可能な認証証明であり、署名付きトークンとは
// 独立したライフサイクルを持つ。
package session

import (
	"context"
	"errors"
)

// ErrNotFound はセッションが存在しないことを表す。
// 期限切れと未発行は意図的に区別しない（存在情報の漏洩を防ぐ）。
// ストアへの接続障害は通常のエラーとして返し、このエラーとは必ず区別する。
var ErrNotFound = errors.New("session not found")

// Store はセッションストアのインターフェース。
// 起動時に実装（Redis / インメモリ）を選択して注入する。
type Store interface {
	// Create は暗号的にランダムなセッションIDを生成し、userIDと紐付けて
	// TTL付きで保存する。同時呼び出しに対して調整なしで安全。
	Create(ctx context.Context, userID string) (string, error)

	// Restore はセッションIDに紐付くuserIDを返す。
	// 期限切れまたは未発行の場合はErrNotFoundを返す。
	Restore(ctx context.Context, sessionID string) (string, error)
}
