// Package token は署名付きベアラートークンの発行と検証を提供する。
// トークンはHS256で署名され、内部ユーザーIDと有効期限のみを運ぶ。
// 検証はストレージを参照しない純粋な操作であり、発行後の失効手段を持たない
// （失効可能な証明はセッションストア側が担う）。
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken は署名不正・改ざん・期限切れなど検証失敗全般を表す。
var ErrInvalidToken = errors.New("invalid token")

// Codec はトークンの発行と検証を行う。
// 同一のsecret・userID・時刻に対して発行結果は決定的。
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// New はCodecを生成する。
func New(secret string, ttl time.Duration) *Codec {
	return &Codec{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// SetNowFunc は発行・検証に使う時刻取得関数を差し替える。テスト用。
func (c *Codec) SetNowFunc(now func() time.Time) {
	c.now = now
}

// Issue はuserIDをsubjectとする署名付きトークンを発行する。
func (c *Codec) Issue(userID string) (string, error) {
	now := c.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify はトークンの署名と有効期限を検証し、subject（ユーザーID）を返す。
// 異なるアルゴリズムで署名されたトークン、改ざんされたペイロード、
// 期限切れはすべてErrInvalidTokenとして返す。
func (c *Codec) Verify(tokenString string) (string, error) {
	parsed, err := jwt.ParseWithClaims(
		tokenString,
		&jwt.RegisteredClaims{},
		func(t *jwt.Token) (interface{}, error) {
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return claims.Subject, nil
}
