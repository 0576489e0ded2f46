package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestMemoryUserRepo_CreateAndFindByGoogleSub(t *testing.T) {
	repo := NewMemoryUserRepo()
	ctx := context.Background()

	created, err := repo.Create(ctx, "sub-1", "user@example.com")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created user should have an ID")
	}
	if created.GoogleSub != "sub-1" {
		t.Errorf("GoogleSub = %q, want %q", created.GoogleSub, "sub-1")
	}
	if created.Email != "user@example.com" {
		t.Errorf("Email = %q, want %q", created.Email, "user@example.com")
	}
	if created.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}

	found, err := repo.FindByGoogleSub(ctx, "sub-1")
	if err != nil {
		t.Fatalf("FindByGoogleSub failed: %v", err)
	}
	if found == nil {
		t.Fatal("expected user, got nil")
	}
	if found.ID != created.ID {
		t.Errorf("found.ID = %q, want %q", found.ID, created.ID)
	}
}

func TestMemoryUserRepo_FindByGoogleSub_NotFound(t *testing.T) {
	repo := NewMemoryUserRepo()

	found, err := repo.FindByGoogleSub(context.Background(), "no-such-sub")
	if err != nil {
		t.Fatalf("FindByGoogleSub failed: %v", err)
	}
	if found != nil {
		t.Errorf("expected nil for unknown sub, got %+v", found)
	}
}

func TestMemoryUserRepo_FindByID(t *testing.T) {
	repo := NewMemoryUserRepo()
	ctx := context.Background()

	created, err := repo.Create(ctx, "sub-1", "user@example.com")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	found, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if found == nil {
		t.Fatal("expected user, got nil")
	}
	if found.GoogleSub != "sub-1" {
		t.Errorf("GoogleSub = %q, want %q", found.GoogleSub, "sub-1")
	}
}

func TestMemoryUserRepo_FindByID_NotFound(t *testing.T) {
	repo := NewMemoryUserRepo()

	found, err := repo.FindByID(context.Background(), "no-such-id")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if found != nil {
		t.Errorf("expected nil for unknown ID, got %+v", found)
	}
}

func TestMemoryUserRepo_Create_DuplicateSubject(t *testing.T) {
	repo := NewMemoryUserRepo()
	ctx := context.Background()

	first, err := repo.Create(ctx, "sub-1", "user@example.com")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err = repo.Create(ctx, "sub-1", "other@example.com")
	if !errors.Is(err, ErrDuplicateSubject) {
		t.Fatalf("expected ErrDuplicateSubject, got %v", err)
	}

	// 衝突に負けた側が既存レコードを壊さないこと
	found, err := repo.FindByGoogleSub(ctx, "sub-1")
	if err != nil {
		t.Fatalf("FindByGoogleSub failed: %v", err)
	}
	if found.ID != first.ID {
		t.Errorf("found.ID = %q, want original %q", found.ID, first.ID)
	}
	if found.Email != "user@example.com" {
		t.Errorf("Email = %q, want original %q", found.Email, "user@example.com")
	}
}

func TestMemoryUserRepo_Create_DistinctSubjectsGetDistinctIDs(t *testing.T) {
	repo := NewMemoryUserRepo()
	ctx := context.Background()

	u1, err := repo.Create(ctx, "sub-1", "a@example.com")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	u2, err := repo.Create(ctx, "sub-2", "b@example.com")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if u1.ID == u2.ID {
		t.Errorf("distinct subjects should get distinct IDs, both got %q", u1.ID)
	}
}

func TestMemoryUserRepo_Create_ConcurrentSameSubject_OneWinner(t *testing.T) {
	repo := NewMemoryUserRepo()
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	var successes int
	var duplicates int

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Create(ctx, "sub-race", "race@example.com")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrDuplicateSubject):
				duplicates++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	// 同一subjectへの同時作成はちょうど1回だけ成功する
	if successes != 1 {
		t.Errorf("successes = %d, want 1", successes)
	}
	if duplicates != n-1 {
		t.Errorf("duplicates = %d, want %d", duplicates, n-1)
	}
}

func TestMemoryUserRepo_ReturnedUserIsIsolated(t *testing.T) {
	repo := NewMemoryUserRepo()
	ctx := context.Background()

	created, err := repo.Create(ctx, "sub-1", "user@example.com")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// 返り値を書き換えても内部状態に影響しない
	created.Email = "mutated@example.com"

	found, err := repo.FindByGoogleSub(ctx, "sub-1")
	if err != nil {
		t.Fatalf("FindByGoogleSub failed: %v", err)
	}
	if found.Email != "user@example.com" {
		t.Errorf("Email = %q, want %q (internal record should be isolated)", found.Email, "user@example.com")
	}
}
