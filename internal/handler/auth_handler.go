// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hitoshi/walletauth/internal/middleware"
	"github.com/hitoshi/walletauth/internal/model"
)

const oauthStateCookie = "oauth_state"

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	LoginURL(state string) string
	HandleCallback(ctx context.Context, code string) (*model.AuthTokens, error)
	VerifyToken(tokenString string) (string, error)
	RestoreSession(ctx context.Context, sessionID string) (*model.User, error)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieSecure bool
}

// AuthHandler はOAuth認証関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
	}
}

// Login はGoogle OAuthフローを開始し、認証URLをJSONで返す。
// リダイレクトは呼び出し側（ゲートウェイまたはフロントエンド）が行う。
// GET /auth/google/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state, err := generateState()
	if err != nil {
		slog.Error("failed to generate oauth state", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	// stateをCookieに保存（CSRF対策）
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10分
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{
		"auth_url": h.service.LoginURL(state),
	})
}

// Callback はOAuthコールバックを処理し、アクセストークンとセッションIDを返す。
// GET /auth/google/callback?code=xxx&state=yyy
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	// 1. stateの検証（CSRF対策）
	// stateクッキーを持たないクライアント（ブラウザ以外の呼び出し元）は
	// 警告ログのみで通す。クッキーがある場合は不一致を拒否する。
	state := r.URL.Query().Get("state")
	if stateCookie, err := r.Cookie(oauthStateCookie); err == nil {
		if stateCookie.Value != state {
			slog.Warn("oauth state mismatch")
			writeAuthError(w, model.NewInvalidStateError())
			return
		}
		// 使用済みのstateクッキーを削除
		http.SetCookie(w, &http.Cookie{
			Name:     oauthStateCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.config.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	} else {
		slog.Warn("oauth callback without state cookie")
	}

	// 2. 認可コードの取得
	code := r.URL.Query().Get("code")
	if code == "" {
		writeAuthError(w, model.NewMissingCodeError())
		return
	}

	// 3. ログインパイプラインの実行
	tokens, err := h.service.HandleCallback(r.Context(), code)
	if err != nil {
		if authErr, ok := model.AsAuthError(err); ok {
			writeAuthError(w, authErr)
			return
		}
		slog.Error("oauth callback failed", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	writeJSON(w, http.StatusOK, tokens)
}

// Verify は署名付きトークンを検証し、ユーザーIDを返す。
// GET /auth/verify?token=xxx
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		writeAuthError(w, model.NewInvalidTokenError(nil))
		return
	}

	userID, err := h.service.VerifyToken(tokenString)
	if err != nil {
		if authErr, ok := model.AsAuthError(err); ok {
			writeAuthError(w, authErr)
			return
		}
		middleware.WriteInternalServerError(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"user_id": userID})
}

// RestoreSession はセッションIDから所有ユーザーを復元して返す。
// GET /auth/session/restore?session_id=xxx
func (h *AuthHandler) RestoreSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		// 未指定は未発行ハンドルと同じ扱いにする
		writeAuthError(w, model.NewSessionNotFoundError())
		return
	}

	user, err := h.service.RestoreSession(r.Context(), sessionID)
	if err != nil {
		if authErr, ok := model.AsAuthError(err); ok {
			writeAuthError(w, authErr)
			return
		}
		slog.Error("session restore failed", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]*model.User{"user": user})
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeAuthError はエラーコードをHTTPステータスに対応付けて
// 統一エラーフォーマットで書き込む。
func writeAuthError(w http.ResponseWriter, authErr *model.AuthError) {
	middleware.WriteErrorResponse(w, statusForCode(authErr.Code), authErr)
}

// statusForCode はエラーコードごとのHTTPステータスを返す。
// プロバイダー呼び出しの失敗は502、検証失敗は401、未検出は404、
// リクエスト不備は400、それ以外は500に対応付ける。
func statusForCode(code string) int {
	switch code {
	case model.ErrCodeInvalidState, model.ErrCodeMissingCode:
		return http.StatusBadRequest
	case model.ErrCodeInvalidToken:
		return http.StatusUnauthorized
	case model.ErrCodeSessionNotFound, model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeTokenExchange, model.ErrCodeUserInfoFetch, model.ErrCodeUserInfoParse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// generateState はCSRF対策用のランダムなstate値を生成する。
func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
