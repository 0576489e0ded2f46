// Package model はドメインモデルを定義する。
package model

import "time"

// User はGoogleアカウントに紐付く内部ユーザーを表す。
// google_subごとに1回だけ作成され、以降は不変として扱う。
// google_sub → ID の対応は一度確立したら変わらない（単射）。
type User struct {
	ID        string    `json:"id"`
	GoogleSub string    `json:"google_sub"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthTokens はログイン成功時に発行される2種類の認証証明。
// AccessTokenはステートレスな署名付きトークン、SessionIDは
// サーバー側で失効可能なセッションハンドル。互いに独立しており、
// どちらも他方を参照しない。
type AuthTokens struct {
	AccessToken string `json:"access_token"`
	SessionID   string `json:"session_id"`
}
