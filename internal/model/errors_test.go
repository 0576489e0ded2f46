package model

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestAuthError_Error_WithCause(t *testing.T) {
	cause := errors.New("connection refused")
	e := NewSessionStoreError(cause)

	msg := e.Error()
	if !strings.Contains(msg, ErrCodeSessionStore) {
		t.Errorf("Error() = %q, should contain code %q", msg, ErrCodeSessionStore)
	}
	if !strings.Contains(msg, "connection refused") {
		t.Errorf("Error() = %q, should contain cause message", msg)
	}
}

func TestAuthError_Error_WithoutCause(t *testing.T) {
	e := NewSessionNotFoundError()

	msg := e.Error()
	if !strings.Contains(msg, ErrCodeSessionNotFound) {
		t.Errorf("Error() = %q, should contain code %q", msg, ErrCodeSessionNotFound)
	}
}

func TestAuthError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	e := NewUserCreateError(cause)

	if !errors.Is(e, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestAuthError_Unwrap_Nil(t *testing.T) {
	e := NewInvalidStateError()

	if e.Unwrap() != nil {
		t.Errorf("Unwrap() = %v, want nil", e.Unwrap())
	}
}

func TestAsAuthError_DirectError(t *testing.T) {
	e := NewTokenExchangeError(errors.New("http 500"))

	got, ok := AsAuthError(e)
	if !ok {
		t.Fatal("AsAuthError should succeed for *AuthError")
	}
	if got.Code != ErrCodeTokenExchange {
		t.Errorf("Code = %q, want %q", got.Code, ErrCodeTokenExchange)
	}
}

func TestAsAuthError_WrappedError(t *testing.T) {
	e := NewUserLookupError(errors.New("db down"))
	wrapped := fmt.Errorf("login failed: %w", e)

	got, ok := AsAuthError(wrapped)
	if !ok {
		t.Fatal("AsAuthError should succeed for a wrapped *AuthError")
	}
	if got.Code != ErrCodeUserLookup {
		t.Errorf("Code = %q, want %q", got.Code, ErrCodeUserLookup)
	}
}

func TestAsAuthError_PlainError(t *testing.T) {
	_, ok := AsAuthError(errors.New("plain"))
	if ok {
		t.Error("AsAuthError should fail for a plain error")
	}
}

func TestAuthErrorConstructors_CodesAndCategories(t *testing.T) {
	cause := errors.New("x")
	tests := []struct {
		name     string
		err      *AuthError
		code     string
		category string
	}{
		{"oauth config", NewOAuthConfigError(cause), ErrCodeOAuthConfig, "provider"},
		{"token exchange", NewTokenExchangeError(cause), ErrCodeTokenExchange, "provider"},
		{"userinfo fetch", NewUserInfoFetchError(cause), ErrCodeUserInfoFetch, "provider"},
		{"userinfo parse", NewUserInfoParseError(cause), ErrCodeUserInfoParse, "provider"},
		{"user lookup", NewUserLookupError(cause), ErrCodeUserLookup, "repository"},
		{"user create", NewUserCreateError(cause), ErrCodeUserCreate, "repository"},
		{"session store", NewSessionStoreError(cause), ErrCodeSessionStore, "session"},
		{"session create", NewSessionCreateError(cause), ErrCodeSessionCreate, "session"},
		{"session restore", NewSessionRestoreError(cause), ErrCodeSessionRestore, "session"},
		{"token issue", NewTokenIssueError(cause), ErrCodeTokenIssue, "token"},
		{"invalid token", NewInvalidTokenError(cause), ErrCodeInvalidToken, "token"},
		{"session not found", NewSessionNotFoundError(), ErrCodeSessionNotFound, "session"},
		{"user not found", NewUserNotFoundError(), ErrCodeUserNotFound, "auth"},
		{"invalid state", NewInvalidStateError(), ErrCodeInvalidState, "auth"},
		{"missing code", NewMissingCodeError(), ErrCodeMissingCode, "auth"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %q, want %q", tt.err.Code, tt.code)
			}
			if tt.err.Category != tt.category {
				t.Errorf("Category = %q, want %q", tt.err.Category, tt.category)
			}
			if tt.err.Message == "" {
				t.Error("Message should not be empty")
			}
		})
	}
}
