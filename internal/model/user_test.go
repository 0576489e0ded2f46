package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestUser_JSONFieldNames(t *testing.T) {
	u := User{
		ID:        "11111111-1111-1111-1111-111111111111",
		GoogleSub: "google-sub-1",
		Email:     "user@example.com",
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	for _, key := range []string{"id", "google_sub", "email", "created_at"} {
		if _, ok := m[key]; !ok {
			t.Errorf("marshaled User should contain field %q", key)
		}
	}
}

// シリアライズしたUserがプロバイダー由来の認証情報を一切含まないことを確認する。
// アクセストークン等はプロバイダー呼び出しのスコープ内でのみ生存する。
func TestUser_JSONContainsNoProviderCredentials(t *testing.T) {
	u := User{
		ID:        "u-1",
		GoogleSub: "sub-1",
		Email:     "user@example.com",
		CreatedAt: time.Now(),
	}

	data, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	s := string(data)
	for _, forbidden := range []string{"access_token", "refresh_token", "id_token"} {
		if strings.Contains(s, forbidden) {
			t.Errorf("marshaled User should not contain %q, got: %s", forbidden, s)
		}
	}
}

func TestAuthTokens_JSONFieldNames(t *testing.T) {
	tokens := AuthTokens{
		AccessToken: "jwt-token",
		SessionID:   "session-uuid",
	}

	data, err := json.Marshal(tokens)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if m["access_token"] != "jwt-token" {
		t.Errorf("access_token = %q, want %q", m["access_token"], "jwt-token")
	}
	if m["session_id"] != "session-uuid" {
		t.Errorf("session_id = %q, want %q", m["session_id"], "session-uuid")
	}
}
