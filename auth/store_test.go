package auth

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"

	"taskdeck/domain"
	"taskdeck/storage"
)

func newTestStore() (*Store, *storage.MemoryKV) {
	logger := log.New()
	logger.SetOutput(io.Discard)
	kv := storage.NewMemoryKV()
	return NewStore(kv, logger), kv
}

func TestRegisterSucceedsAndPersists(t *testing.T) {
	ctx := context.Background()
	store, kv := newTestStore()

	sess, err := store.Register(ctx, "a@x.com", "secret1", "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if sess.Email != "a@x.com" || sess.ID == "" {
		t.Fatalf("unexpected session: %#v", sess)
	}

	raw, ok, err := kv.Get(ctx, "users")
	if err != nil || !ok {
		t.Fatalf("users table not persisted: ok=%v err=%v", ok, err)
	}
	var users []domain.User
	if err := sonic.UnmarshalString(raw, &users); err != nil {
		t.Fatalf("decode users: %v", err)
	}
	if len(users) != 1 || users[0].Email != "a@x.com" || users[0].Password != "secret1" {
		t.Fatalf("unexpected users table: %#v", users)
	}

	if _, ok, _ := kv.Get(ctx, "session"); !ok {
		t.Fatal("session not persisted")
	}
}

func TestRegisterDuplicateEmailKeepsOriginalUser(t *testing.T) {
	ctx := context.Background()
	store, kv := newTestStore()

	if _, err := store.Register(ctx, "a@x.com", "secret1", "secret1"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := store.Register(ctx, "a@x.com", "other1", "other1")
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if !IsKind(err, KindConflict) {
		t.Fatalf("expected conflict kind, got %v", err)
	}

	raw, _, _ := kv.Get(ctx, "users")
	var users []domain.User
	if err := sonic.UnmarshalString(raw, &users); err != nil {
		t.Fatalf("decode users: %v", err)
	}
	if len(users) != 1 || users[0].Password != "secret1" {
		t.Fatalf("original user changed: %#v", users)
	}
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name                     string
		email, password, confirm string
		want                     error
	}{
		{"empty email", "", "secret1", "secret1", ErrFieldsRequired},
		{"empty password", "a@x.com", "", "secret1", ErrFieldsRequired},
		{"empty confirm", "a@x.com", "secret1", "", ErrFieldsRequired},
		{"short password", "a@x.com", "abc", "abc", ErrPasswordTooShort},
		{"mismatch", "a@x.com", "secret1", "secret2", ErrPasswordMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _ := newTestStore()
			_, err := store.Register(context.Background(), tt.email, tt.password, tt.confirm)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if !IsKind(err, KindValidation) {
				t.Fatalf("expected validation kind, got %v", err)
			}
		})
	}
}

func TestLoginMatchesCredentialsLiterally(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	if _, err := store.Register(ctx, "a@x.com", "secret1", "secret1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := store.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if _, err := store.Login(ctx, "a@x.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := store.Login(ctx, "nobody@x.com", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
	// Email comparison is exact, no normalization.
	if _, err := store.Login(ctx, "A@X.COM", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("case-folded email: expected ErrInvalidCredentials, got %v", err)
	}

	sess, err := store.Login(ctx, "a@x.com", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if sess.Email != "a@x.com" || sess.ID == "" {
		t.Fatalf("unexpected session: %#v", sess)
	}
}

func TestLoginFailureIsSymmetric(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()
	if _, err := store.Register(ctx, "a@x.com", "secret1", "secret1"); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, errWrongPass := store.Login(ctx, "a@x.com", "nope")
	_, errUnknown := store.Login(ctx, "b@x.com", "secret1")
	if errWrongPass.Error() != errUnknown.Error() {
		t.Fatalf("failure messages differ: %q vs %q", errWrongPass, errUnknown)
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	if _, err := store.Register(ctx, "a@x.com", "secret1", "secret1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := store.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if err := store.Logout(ctx); err != nil {
		t.Fatalf("second logout: %v", err)
	}
	if _, ok := store.CurrentSession(ctx); ok {
		t.Fatal("session survived logout")
	}
}

func TestCurrentSessionRestoresAcrossInstances(t *testing.T) {
	ctx := context.Background()
	store, kv := newTestStore()

	sess, err := store.Register(ctx, "a@x.com", "secret1", "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	logger := log.New()
	logger.SetOutput(io.Discard)
	restored, ok := NewStore(kv, logger).CurrentSession(ctx)
	if !ok {
		t.Fatal("expected a restored session")
	}
	if restored != sess {
		t.Fatalf("restored %#v, want %#v", restored, sess)
	}
}

func TestCurrentSessionSwallowsMalformedPayload(t *testing.T) {
	ctx := context.Background()
	store, kv := newTestStore()

	if err := kv.Set(ctx, "session", "{oops"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, ok := store.CurrentSession(ctx); ok {
		t.Fatal("malformed session should read as logged out")
	}
}

func TestMalformedUsersTableTreatedAsEmpty(t *testing.T) {
	ctx := context.Background()
	store, kv := newTestStore()

	if err := kv.Set(ctx, "users", "not json at all"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := store.Login(ctx, "a@x.com", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := store.Register(ctx, "a@x.com", "secret1", "secret1"); err != nil {
		t.Fatalf("register over corrupt table: %v", err)
	}
}
