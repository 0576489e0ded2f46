package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultGoogleAuthURL     = "https://accounts.google.com/o/oauth2/v2/auth"
	defaultGoogleTokenURL    = "https://oauth2.googleapis.com/token"
	defaultGoogleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

	defaultHTTPTimeout = 10 * time.Second
)

// プロバイダー操作の失敗種別。呼び出し側はerrors.Isでステップを判別する。
var (
	// ErrProviderConfig はクライアント設定の不備を表す。
	ErrProviderConfig = errors.New("oauth provider config invalid")
	// ErrTokenExchange は認可コードのトークン交換失敗を表す。
	ErrTokenExchange = errors.New("oauth token exchange failed")
	// ErrUserInfoFetch はユーザー情報エンドポイントへのアクセス失敗を表す。
	ErrUserInfoFetch = errors.New("userinfo fetch failed")
	// ErrUserInfoParse はユーザー情報レスポンスのスキーマ不一致を表す。
	ErrUserInfoParse = errors.New("userinfo parse failed")
)

// GoogleOAuthConfig はGoogle OAuthプロバイダーの設定。
type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// プロバイダーへのHTTP呼び出しのタイムアウト。ゼロ値の場合は10秒。
	Timeout time.Duration

	// テスト用にオーバーライド可能なURL
	AuthURL     string
	TokenURL    string
	UserInfoURL string
}

// GoogleOAuthProvider はGoogle OAuth 2.0の認可コードフローを提供する。
// ローカル状態を持たず、コールバック1回につき外部呼び出しを2回行う
// （トークン交換とユーザー情報取得）。
type GoogleOAuthProvider struct {
	config GoogleOAuthConfig
	client *http.Client
}

// NewGoogleOAuthProvider はGoogleOAuthProviderを生成する。
// 設定が不正な場合はErrProviderConfigを返す。
func NewGoogleOAuthProvider(config GoogleOAuthConfig) (*GoogleOAuthProvider, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	if config.AuthURL == "" {
		config.AuthURL = defaultGoogleAuthURL
	}
	if config.TokenURL == "" {
		config.TokenURL = defaultGoogleTokenURL
	}
	if config.UserInfoURL == "" {
		config.UserInfoURL = defaultGoogleUserInfoURL
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultHTTPTimeout
	}

	return &GoogleOAuthProvider{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}, nil
}

// validateConfig はクライアント設定を検証する。
// リダイレクトURLはhttp(s)の絶対URLであること。
func validateConfig(config GoogleOAuthConfig) error {
	if config.ClientID == "" {
		return fmt.Errorf("%w: client ID is required", ErrProviderConfig)
	}
	if config.ClientSecret == "" {
		return fmt.Errorf("%w: client secret is required", ErrProviderConfig)
	}
	u, err := url.Parse(config.RedirectURL)
	if err != nil {
		return fmt.Errorf("%w: invalid redirect URL: %v", ErrProviderConfig, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: redirect URL must be an absolute http(s) URL: %q", ErrProviderConfig, config.RedirectURL)
	}
	return nil
}

// LoginURL はGoogle OAuthの認証URLを決定的に構築する。
// スコープにはopenid, email, profileを含む。
func (p *GoogleOAuthProvider) LoginURL(state string) string {
	params := url.Values{
		"client_id":     {p.config.ClientID},
		"redirect_uri":  {p.config.RedirectURL},
		"response_type": {"code"},
		"scope":         {"openid email profile"},
		"state":         {state},
	}
	return p.config.AuthURL + "?" + params.Encode()
}

// googleTokenResponse はGoogleのトークンエンドポイントのレスポンス。
type googleTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// googleUserInfo はGoogleのユーザー情報エンドポイントのレスポンス。
type googleUserInfo struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
}

// ExchangeCode は認可コードをアクセストークンに交換する。
// 外部ネットワーク呼び出しは1回。トランスポートエラー・非2xx・
// 不正なペイロードはすべてErrTokenExchangeとして返す。リトライはしない
// （ログインのやり直しはユーザー操作に委ねる）。
func (p *GoogleOAuthProvider) ExchangeCode(ctx context.Context, code string) (string, error) {
	data := url.Values{
		"code":          {code},
		"client_id":     {p.config.ClientID},
		"client_secret": {p.config.ClientSecret},
		"redirect_uri":  {p.config.RedirectURL},
		"grant_type":    {"authorization_code"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: failed to create token request: %v", ErrTokenExchange, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: token request failed: %v", ErrTokenExchange, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read token response: %v", ErrTokenExchange, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: token endpoint returned status %d", ErrTokenExchange, resp.StatusCode)
	}

	var tokenResp googleTokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("%w: failed to parse token response: %v", ErrTokenExchange, err)
	}

	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token in response", ErrTokenExchange)
	}

	return tokenResp.AccessToken, nil
}

// FetchUserInfo はアクセストークンでGoogleのユーザー情報を取得する。
// 外部ネットワーク呼び出しは1回。トランスポートエラー・非2xxは
// ErrUserInfoFetch、スキーマ不一致はErrUserInfoParseとして返す。
func (p *GoogleOAuthProvider) FetchUserInfo(ctx context.Context, accessToken string) (*OAuthUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.UserInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create userinfo request: %v", ErrUserInfoFetch, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: userinfo request failed: %v", ErrUserInfoFetch, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read userinfo response: %v", ErrUserInfoFetch, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: userinfo endpoint returned status %d", ErrUserInfoFetch, resp.StatusCode)
	}

	var userInfo googleUserInfo
	if err := json.Unmarshal(body, &userInfo); err != nil {
		return nil, fmt.Errorf("%w: failed to parse userinfo response: %v", ErrUserInfoParse, err)
	}

	if userInfo.Sub == "" {
		return nil, fmt.Errorf("%w: empty sub in userinfo response", ErrUserInfoParse)
	}

	return &OAuthUserInfo{
		Sub:   userInfo.Sub,
		Email: userInfo.Email,
	}, nil
}

// compile-time interface check
var _ OAuthProvider = (*GoogleOAuthProvider)(nil)
