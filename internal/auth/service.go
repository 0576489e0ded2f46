// Package auth はOAuth認証フローとログインパイプラインを提供する。
package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hitoshi/walletauth/internal/model"
	"github.com/hitoshi/walletauth/internal/repository"
	"github.com/hitoshi/walletauth/internal/session"
)

// OAuthUserInfo はOAuthプロバイダーから取得したユーザー情報を表す。
// コールバック処理の間だけ使われ、永続化しない。
type OAuthUserInfo struct {
	Sub   string
	Email string
}

// OAuthProvider はOAuth認証プロバイダーのインターフェース。
type OAuthProvider interface {
	// LoginURL はOAuth認証URLを生成する。
	LoginURL(state string) string
	// ExchangeCode は認可コードをアクセストークンに交換する。
	ExchangeCode(ctx context.Context, code string) (string, error)
	// FetchUserInfo はアクセストークンでユーザー情報を取得する。
	FetchUserInfo(ctx context.Context, accessToken string) (*OAuthUserInfo, error)
}

// TokenIssuer は署名付きトークンの発行インターフェース。
// token.Codecの部分集合として定義する。
type TokenIssuer interface {
	Issue(userID string) (string, error)
	Verify(tokenString string) (string, error)
}

// MetricsRecorder はログインパイプラインのメトリクス記録インターフェース。
// 計測を行わない場合はnilを渡せる。
type MetricsRecorder interface {
	RecordLoginSuccess()
	RecordLoginFailure(code string)
	RecordExchangeLatency(d time.Duration)
	RecordSessionCreated()
	RecordTokenVerify(ok bool)
}

// Service はログインパイプラインと読み取り専用の検証・復元フローを提供する。
//
// コールバックは線形パイプラインとして処理される:
//
//	コード交換 → プロフィール取得 → ユーザー解決 → セッション発行 → トークン発行
//
// 各ステップは失敗時にちょうど1つのエラーコードを生成し、最初の失敗で
// 残りのステップを打ち切る。補償処理は行わない（ユーザー作成はsubjectごとに
// 冪等なため、やり直しても同じユーザーに収束する）。
type Service struct {
	oauth    OAuthProvider
	users    repository.UserRepository
	sessions session.Store
	tokens   TokenIssuer
	metrics  MetricsRecorder
}

// NewService はServiceを生成する。
func NewService(
	oauth OAuthProvider,
	users repository.UserRepository,
	sessions session.Store,
	tokens TokenIssuer,
	metrics MetricsRecorder,
) *Service {
	return &Service{
		oauth:    oauth,
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		metrics:  metrics,
	}
}

// LoginURL はOAuth認証URLを生成する。
func (s *Service) LoginURL(state string) string {
	return s.oauth.LoginURL(state)
}

// HandleCallback はOAuthコールバックを処理し、アクセストークンと
// セッションIDを発行する。失敗時は必ず*model.AuthErrorを返す。
func (s *Service) HandleCallback(ctx context.Context, code string) (*model.AuthTokens, error) {
	// 1. 認可コードをアクセストークンに交換
	start := time.Now()
	accessToken, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		return nil, s.fail(model.NewTokenExchangeError(err), "oauth token exchange failed")
	}
	if s.metrics != nil {
		s.metrics.RecordExchangeLatency(time.Since(start))
	}

	// 2. アクセストークンでユーザー情報を取得
	userInfo, err := s.oauth.FetchUserInfo(ctx, accessToken)
	if err != nil {
		if errors.Is(err, ErrUserInfoParse) {
			return nil, s.fail(model.NewUserInfoParseError(err), "failed to parse user info")
		}
		return nil, s.fail(model.NewUserInfoFetchError(err), "failed to fetch user info")
	}

	// 3. 内部ユーザーを解決（存在しなければ作成）
	user, authErr := s.resolveUser(ctx, userInfo)
	if authErr != nil {
		return nil, s.fail(authErr, "failed to resolve user")
	}

	// 4. セッションを発行
	sessionID, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, s.fail(model.NewSessionCreateError(err), "failed to create session")
	}
	if s.metrics != nil {
		s.metrics.RecordSessionCreated()
	}

	// 5. 署名付きトークンを発行
	signed, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, s.fail(model.NewTokenIssueError(err), "failed to issue token")
	}

	if s.metrics != nil {
		s.metrics.RecordLoginSuccess()
	}
	slog.Info("login completed",
		slog.String("user_id", user.ID),
	)

	return &model.AuthTokens{
		AccessToken: signed,
		SessionID:   sessionID,
	}, nil
}

// resolveUser はgoogle_subから内部ユーザーを解決する。
// 未登録の場合は作成し、作成が一意制約違反で競合した場合は既存レコードを
// 取得し直す。同一subjectへの同時初回ログインは必ず1ユーザーに収束する。
func (s *Service) resolveUser(ctx context.Context, userInfo *OAuthUserInfo) (*model.User, *model.AuthError) {
	user, err := s.users.FindByGoogleSub(ctx, userInfo.Sub)
	if err != nil {
		return nil, model.NewUserLookupError(err)
	}
	if user != nil {
		slog.Info("existing user logged in",
			slog.String("user_id", user.ID),
		)
		return user, nil
	}

	created, err := s.users.Create(ctx, userInfo.Sub, userInfo.Email)
	if err == nil {
		slog.Info("new user created",
			slog.String("user_id", created.ID),
		)
		return created, nil
	}

	if !errors.Is(err, repository.ErrDuplicateSubject) {
		return nil, model.NewUserCreateError(err)
	}

	// 同時初回ログインとの競合。勝者のレコードを取得し直す。
	existing, err := s.users.FindByGoogleSub(ctx, userInfo.Sub)
	if err != nil {
		return nil, model.NewUserLookupError(err)
	}
	if existing == nil {
		return nil, model.NewUserLookupError(errors.New("user vanished after duplicate subject conflict"))
	}

	slog.Info("concurrent signup converged to existing user",
		slog.String("user_id", existing.ID),
	)
	return existing, nil
}

// VerifyToken は署名付きトークンを検証し、ユーザーIDを返す。
// ストレージを参照しない読み取り専用フロー。
func (s *Service) VerifyToken(tokenString string) (string, error) {
	userID, err := s.tokens.Verify(tokenString)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordTokenVerify(false)
		}
		slog.Warn("token verification failed",
			slog.String("error", err.Error()),
		)
		return "", model.NewInvalidTokenError(err)
	}

	if s.metrics != nil {
		s.metrics.RecordTokenVerify(true)
	}
	return userID, nil
}

// RestoreSession はセッションIDから所有ユーザーを復元する。
// セッション未検出とユーザー未検出はいずれも「見つからない」系の
// エラーコードとして報告する。
func (s *Service) RestoreSession(ctx context.Context, sessionID string) (*model.User, error) {
	userID, err := s.sessions.Restore(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, model.NewSessionNotFoundError()
		}
		slog.Error("failed to restore session",
			slog.String("error", err.Error()),
		)
		return nil, model.NewSessionRestoreError(err)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		slog.Error("failed to load session user",
			slog.String("error", err.Error()),
		)
		return nil, model.NewUserLookupError(err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	return user, nil
}

// fail は失敗ステップをログとメトリクスに記録し、エラーをそのまま返す。
func (s *Service) fail(authErr *model.AuthError, msg string) error {
	if s.metrics != nil {
		s.metrics.RecordLoginFailure(authErr.Code)
	}
	slog.Error(msg,
		slog.String("code", authErr.Code),
		slog.String("error", authErr.Error()),
	)
	return authErr
}
