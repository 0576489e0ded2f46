package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/hitoshi/walletauth/internal/model"
)

// uniqueViolation はPostgreSQLのunique_violationエラーコード。
const uniqueViolation = "23505"

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
// usersテーブルのgoogle_sub一意制約で同時作成の収束を保証する。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// FindByGoogleSub はgoogle_subでユーザーを検索する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByGoogleSub(ctx context.Context, sub string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, google_sub, email, created_at FROM users WHERE google_sub = $1`,
		sub,
	).Scan(&user.ID, &user.GoogleSub, &user.Email, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by google_sub: %w", err)
	}

	return user, nil
}

// Create は新規ユーザーを作成する。
// google_subの一意制約違反はErrDuplicateSubjectとして返す。
// 同時に作成が競合した場合、負けた側はこのエラーを受け取り
// FindByGoogleSubで既存レコードを取得し直すことで1ユーザーに収束する。
func (r *PostgresUserRepo) Create(ctx context.Context, sub, email string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (id, google_sub, email, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, google_sub, email, created_at`,
		uuid.New().String(), sub, email, time.Now().UTC(),
	).Scan(&user.ID, &user.GoogleSub, &user.Email, &user.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSubject, sub)
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return user, nil
}

// FindByID は内部IDでユーザーを検索する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, google_sub, email, created_at FROM users WHERE id = $1`,
		id,
	).Scan(&user.ID, &user.GoogleSub, &user.Email, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	return user, nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
