package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/walletauth/internal/model"
)

func TestWriteErrorResponse_Format(t *testing.T) {
	rec := httptest.NewRecorder()
	authErr := model.NewSessionNotFoundError()

	WriteErrorResponse(rec, http.StatusNotFound, authErr)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want %q", ct, "application/json")
	}

	var body ErrorResponseBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response body: %v", err)
	}

	if body.Error != model.ErrCodeSessionNotFound {
		t.Errorf("Error = %q, want %q", body.Error, model.ErrCodeSessionNotFound)
	}
	if body.Message == "" {
		t.Error("Message should not be empty")
	}
	if body.Category != "session" {
		t.Errorf("Category = %q, want %q", body.Category, "session")
	}
}

func TestWriteErrorResponse_DoesNotLeakCause(t *testing.T) {
	rec := httptest.NewRecorder()
	authErr := model.NewTokenExchangeError(errors.New("client_secret=s3cr3t leaked in upstream error"))

	WriteErrorResponse(rec, http.StatusBadGateway, authErr)

	// 原因エラーの内容はレスポンスに含めない
	if strings.Contains(rec.Body.String(), "s3cr3t") {
		t.Errorf("response body should not contain the underlying error, got: %s", rec.Body.String())
	}
}

func TestWriteInternalServerError(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteInternalServerError(rec)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}

	var body ErrorResponseBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response body: %v", err)
	}
	if body.Error != "internal_error" {
		t.Errorf("Error = %q, want %q", body.Error, "internal_error")
	}
}
