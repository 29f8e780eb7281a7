package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/epiwatch/epiwatch/pkg/auth"
)

func TestFindByUsername(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}
	defer db.Close()

	dir := NewDirectory(db)

	created := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	lastLogin := time.Date(2026, 2, 10, 8, 30, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT username, email, role, is_active, created_at, last_login FROM users").
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"username", "email", "role", "is_active", "created_at", "last_login"}).
			AddRow("alice", "alice@example.com", "admin", true, created, lastLogin))

	identity, err := dir.FindByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("FindByUsername failed: %v", err)
	}
	if identity == nil {
		t.Fatal("expected identity for alice")
	}
	if identity.Role != auth.RoleAdmin {
		t.Errorf("expected admin role, got %s", identity.Role)
	}
	if !identity.IsActive {
		t.Error("expected active identity")
	}
	if identity.LastLoginAt == nil || !identity.LastLoginAt.Equal(lastLogin) {
		t.Errorf("unexpected last login: %v", identity.LastLoginAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestFindByUsernameMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}
	defer db.Close()

	dir := NewDirectory(db)

	mock.ExpectQuery("SELECT username, email, role, is_active, created_at, last_login FROM users").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"username", "email", "role", "is_active", "created_at", "last_login"}))

	identity, err := dir.FindByUsername(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("missing user must not be an error: %v", err)
	}
	if identity != nil {
		t.Errorf("expected nil identity, got %+v", identity)
	}
}

func TestFindByUsernameNullLastLogin(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}
	defer db.Close()

	dir := NewDirectory(db)

	mock.ExpectQuery("SELECT username, email, role, is_active, created_at, last_login FROM users").
		WithArgs("bob").
		WillReturnRows(sqlmock.NewRows([]string{"username", "email", "role", "is_active", "created_at", "last_login"}).
			AddRow("bob", "bob@example.com", "admin", true, time.Now(), nil))

	identity, err := dir.FindByUsername(context.Background(), "bob")
	if err != nil {
		t.Fatalf("FindByUsername failed: %v", err)
	}
	if identity.LastLoginAt != nil {
		t.Errorf("expected nil LastLoginAt for a never-authenticated user, got %v", identity.LastLoginAt)
	}
}

func TestFindByUsernameQueryFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}
	defer db.Close()

	dir := NewDirectory(db)

	mock.ExpectQuery("SELECT username, email, role, is_active, created_at, last_login FROM users").
		WithArgs("alice").
		WillReturnError(errors.New("connection reset"))

	if _, err := dir.FindByUsername(context.Background(), "alice"); err == nil {
		t.Error("expected lookup failure to propagate")
	}
}

func TestTouchLastLogin(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}
	defer db.Close()

	dir := NewDirectory(db)

	mock.ExpectExec("UPDATE users SET last_login = NOW\\(\\)").
		WithArgs("alice").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := dir.TouchLastLogin(context.Background(), "alice"); err != nil {
		t.Fatalf("TouchLastLogin failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}
