// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// AuthError は認証パイプラインの失敗を表す統一エラーフォーマット。
// パイプラインの各ステップは失敗時にちょうど1つのエラーコードを生成する。
type AuthError struct {
	Code     string // 安定したエラーコード（snake_case）
	Message  string // ユーザー向けメッセージ
	Category string // カテゴリ: provider, repository, session, token, auth
	Err      error  // 元となったエラー（ログ用。レスポンスには含めない）
}

// Error はerrorインターフェースを実装する。
func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap はerrors.Is/Asによる原因エラーの探索を可能にする。
func (e *AuthError) Unwrap() error {
	return e.Err
}

// AsAuthError はエラーチェーンからAuthErrorを取り出す。
func AsAuthError(err error) (*AuthError, bool) {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr, true
	}
	return nil, false
}

// 定義済みエラーコード
const (
	ErrCodeOAuthConfig     = "oauth_config_error"
	ErrCodeTokenExchange   = "token_exchange_failed"
	ErrCodeUserInfoFetch   = "userinfo_fetch_failed"
	ErrCodeUserInfoParse   = "userinfo_parse_failed"
	ErrCodeUserLookup      = "user_lookup_failed"
	ErrCodeUserCreate      = "user_create_failed"
	ErrCodeSessionStore    = "session_store_unavailable"
	ErrCodeSessionCreate   = "session_create_failed"
	ErrCodeSessionRestore  = "session_restore_failed"
	ErrCodeTokenIssue      = "token_issue_failed"
	ErrCodeInvalidToken    = "invalid_token"
	ErrCodeSessionNotFound = "session_not_found"
	ErrCodeUserNotFound    = "user_not_found"
	ErrCodeInvalidState    = "invalid_state"
	ErrCodeMissingCode     = "missing_code"
)

// NewOAuthConfigError はOAuthクライアント設定不備エラーを生成する。
func NewOAuthConfigError(err error) *AuthError {
	return &AuthError{
		Code:     ErrCodeOAuthConfig,
		Message:  "OAuthクライアントの設定が不正です。",
		Category: "provider",
		Err:      err,
	}
}

// NewTokenExchangeError は認可コード交換失敗エラーを生成する。
func NewTokenExchangeError(err error) *AuthError {
	return &AuthError{
		Code:     ErrCodeTokenExchange,
		Message:  "認可コードのトークン交換に失敗しました。",
		Category: "provider",
		Err:      err,
	}
}

// NewUserInfoFetchError はプロフィール取得失敗エラーを生成する。
func NewUserInfoFetchError(err error) *AuthError {
	return &AuthError{
		Code:     ErrCodeUserInfoFetch,
		Message:  "ユーザー情報の取得に失敗しました。",
		Category: "provider",
		Err:      err,
	}
}

// NewUserInfoParseError はプロフィール解析失敗エラーを生成する。
func NewUserInfoParseError(err error) *AuthError {
	return &AuthError{
		Code:     ErrCodeUserInfoParse,
		Message:  "ユーザー情報の解析に失敗しました。",
		Category: "provider",
		Err:      err,
	}
}

// NewUserLookupError はユーザー検索失敗エラーを生成する。
func NewUserLookupError(err error) *AuthError {
	return &AuthError{
		Code:     ErrCodeUserLookup,
		Message:  "ユーザーの検索に失敗しました。",
		Category: "repository",
		Err:      err,
	}
}

// NewUserCreateError はユーザー作成失敗エラーを生成する。
func NewUserCreateError(err error) *AuthError {
	return &AuthError{
		Code:     ErrCodeUserCreate,
		Message:  "ユーザーの作成に失敗しました。",
		Category: "repository",
		Err:      err,
	}
}

// NewSessionStoreError はセッションストア接続失敗エラーを生成する。
func NewSessionStoreError(err error) *AuthError {
	return &AuthError{
		Code:     ErrCodeSessionStore,
		Message:  "セッションストアに接続できません。",
		Category: "session",
		Err:      err,
	}
}

// NewSessionCreateError はセッション作成失敗エラーを生成する。
func NewSessionCreateError(err error) *AuthError {
	return &AuthError{
		Code:     ErrCodeSessionCreate,
		Message:  "セッションの作成に失敗しました。",
		Category: "session",
		Err:      err,
	}
}

// NewSessionRestoreError はセッション復元失敗エラーを生成する。
func NewSessionRestoreError(err error) *AuthError {
	return &AuthError{
		Code:     ErrCodeSessionRestore,
		Message:  "セッションの復元に失敗しました。",
		Category: "session",
		Err:      err,
	}
}

// NewTokenIssueError はトークン発行失敗エラーを生成する。
func NewTokenIssueError(err error) *AuthError {
	return &AuthError{
		Code:     ErrCodeTokenIssue,
		Message:  "アクセストークンの発行に失敗しました。",
		Category: "token",
		Err:      err,
	}
}

// NewInvalidTokenError は無効トークンエラーを生成する。
// 署名不正・改ざん・期限切れのいずれもこのエラーに正規化する。
func NewInvalidTokenError(err error) *AuthError {
	return &AuthError{
		Code:     ErrCodeInvalidToken,
		Message:  "トークンが無効です。",
		Category: "token",
		Err:      err,
	}
}

// NewSessionNotFoundError はセッション未検出エラーを生成する。
// 期限切れと未発行は区別しない（存在情報の漏洩を防ぐ）。
func NewSessionNotFoundError() *AuthError {
	return &AuthError{
		Code:     ErrCodeSessionNotFound,
		Message:  "セッションが見つかりません。",
		Category: "session",
	}
}

// NewUserNotFoundError はユーザー未検出エラーを生成する。
func NewUserNotFoundError() *AuthError {
	return &AuthError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
	}
}

// NewInvalidStateError はstateパラメータ不一致エラーを生成する。
func NewInvalidStateError() *AuthError {
	return &AuthError{
		Code:     ErrCodeInvalidState,
		Message:  "stateパラメータが一致しません。",
		Category: "auth",
	}
}

// NewMissingCodeError は認可コード未指定エラーを生成する。
func NewMissingCodeError() *AuthError {
	return &AuthError{
		Code:     ErrCodeMissingCode,
		Message:  "認可コードが指定されていません。",
		Category: "auth",
	}
}
