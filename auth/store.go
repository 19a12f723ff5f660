package auth

import (
	"context"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"taskdeck/domain"
	"taskdeck/storage"
)

const (
	usersKey   = "users"
	sessionKey = "session"

	minPasswordLen = 6
)

// Store owns the registered-users table and the active session record. All
// mutations write through to the underlying KV before returning.
type Store struct {
	kv  storage.KV
	log *log.Logger
}

// NewStore creates a session store over the given KV.
func NewStore(kv storage.KV, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Store{kv: kv, log: logger}
}

// Register validates the signup form, appends a new user to the table and
// logs them in. Emails match case-sensitively; a duplicate is a conflict,
// not a validation failure.
func (s *Store) Register(ctx context.Context, email, password, confirm string) (domain.Session, error) {
	if email == "" || password == "" || confirm == "" {
		return domain.Session{}, &Error{Kind: KindValidation, Err: ErrFieldsRequired}
	}
	if len(password) < minPasswordLen {
		return domain.Session{}, &Error{Kind: KindValidation, Err: ErrPasswordTooShort}
	}
	if password != confirm {
		return domain.Session{}, &Error{Kind: KindValidation, Err: ErrPasswordMismatch}
	}

	users, err := s.loadUsers(ctx)
	if err != nil {
		return domain.Session{}, err
	}
	for _, u := range users {
		if u.Email == email {
			return domain.Session{}, &Error{Kind: KindConflict, Err: ErrEmailTaken}
		}
	}

	user := domain.User{ID: uuid.NewString(), Email: email, Password: password}
	users = append(users, user)
	if err := s.saveUsers(ctx, users); err != nil {
		return domain.Session{}, err
	}

	sess := domain.Session{ID: user.ID, Email: user.Email}
	if err := s.saveSession(ctx, sess); err != nil {
		return domain.Session{}, err
	}
	return sess, nil
}

// Login scans the users table for a literal email and password match and
// persists the resulting session. The failure carries no hint of whether
// the email exists.
func (s *Store) Login(ctx context.Context, email, password string) (domain.Session, error) {
	users, err := s.loadUsers(ctx)
	if err != nil {
		return domain.Session{}, err
	}
	for _, u := range users {
		if u.Email == email && u.Password == password {
			sess := domain.Session{ID: u.ID, Email: u.Email}
			if err := s.saveSession(ctx, sess); err != nil {
				return domain.Session{}, err
			}
			return sess, nil
		}
	}
	return domain.Session{}, &Error{Kind: KindAuthentication, Err: ErrInvalidCredentials}
}

// Logout removes the persisted session. Logging out while logged out is
// fine.
func (s *Store) Logout(ctx context.Context) error {
	return s.kv.Delete(ctx, sessionKey)
}

// CurrentSession restores the persisted session, typically once at startup.
// Absent or malformed payloads mean "logged out" and are never surfaced.
func (s *Store) CurrentSession(ctx context.Context) (domain.Session, bool) {
	raw, ok, err := s.kv.Get(ctx, sessionKey)
	if err != nil {
		s.log.Debugf("read session: %v", err)
		return domain.Session{}, false
	}
	if !ok {
		return domain.Session{}, false
	}
	var sess domain.Session
	if err := sonic.UnmarshalString(raw, &sess); err != nil {
		s.log.Debugf("decode session: %v", err)
		return domain.Session{}, false
	}
	if sess.ID == "" {
		return domain.Session{}, false
	}
	return sess, true
}

// loadUsers reads the users table. A malformed payload is logged and treated
// as empty; only infrastructure failures propagate.
func (s *Store) loadUsers(ctx context.Context) ([]domain.User, error) {
	raw, ok, err := s.kv.Get(ctx, usersKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var users []domain.User
	if err := sonic.UnmarshalString(raw, &users); err != nil {
		s.log.Warnf("decode users table: %v", err)
		return nil, nil
	}
	return users, nil
}

func (s *Store) saveUsers(ctx context.Context, users []domain.User) error {
	data, err := sonic.MarshalString(users)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, usersKey, data)
}

func (s *Store) saveSession(ctx context.Context, sess domain.Session) error {
	data, err := sonic.MarshalString(sess)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, sessionKey, data)
}
