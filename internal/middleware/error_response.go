package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/walletauth/internal/model"
)

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
// errorフィールドには安定したエラーコードが入る。秘密情報
// （トークン、署名鍵、プロバイダーの生レスポンス）は決して含めない。
type ErrorResponseBody struct {
	Error    string `json:"error"`
	Message  string `json:"message,omitempty"`
	Category string `json:"category,omitempty"`
}

// WriteErrorResponse は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
// すべてのAPIエンドポイントで一貫したエラーレスポンスを提供する。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, authErr *model.AuthError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponseBody{
		Error:    authErr.Code,
		Message:  authErr.Message,
		Category: authErr.Category,
	})
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusInternalServerError, &model.AuthError{
		Code:     "internal_error",
		Message:  "内部エラーが発生しました。",
		Category: "system",
	})
}
