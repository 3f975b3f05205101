// Package auth implements password sign-in, sessions, access tokens and the
// route guard for the recruiter service.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"hrhelper/recruiter-service/internal/model"
	"hrhelper/recruiter-service/internal/store"
)

// DefaultSessionTTL is how long a sign-in stays valid.
const DefaultSessionTTL = 24 * time.Hour

const minPasswordLength = 6

var (
	// ErrInvalidCredentials is returned by SignIn for an unknown email or a
	// wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUnauthenticated is returned when a token is missing, malformed,
	// expired or belongs to a signed-out session.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrEmailTaken is returned by SignUp when the email is registered.
	ErrEmailTaken = errors.New("email already registered")
)

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// Identity is the authentication collaborator used by transports.
type Identity interface {
	CurrentUser(ctx context.Context, token string) (*model.User, error)
	SignIn(ctx context.Context, email, password string) (*SignInResult, error)
	SignUp(ctx context.Context, email, password, confirm string) (*model.User, error)
	SignOut(ctx context.Context, token string) error
}

// SignInResult is returned on a successful sign-in.
type SignInResult struct {
	User        *model.User `json:"user"`
	AccessToken string      `json:"access_token"`
	ExpiresAt   time.Time   `json:"expires_at"`
}

// Service is the default Identity.
type Service struct {
	users    store.Users
	sessions SessionStore
	secret   []byte
	ttl      time.Duration
	cost     int
	log      *zap.Logger
	now      func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithSessionTTL overrides DefaultSessionTTL.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithBcryptCost overrides bcrypt.DefaultCost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// NewService returns a Service signing tokens with secret.
func NewService(users store.Users, sessions SessionStore, secret string, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		users:    users,
		sessions: sessions,
		secret:   []byte(secret),
		ttl:      DefaultSessionTTL,
		cost:     bcrypt.DefaultCost,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ Identity = (*Service)(nil)

// ─── Sign-in / sign-up ───────────────────────────────────────────────────────

// SignIn verifies the credentials and opens a new session.
func (s *Service) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, &ValidationError{Msg: "email and password are required"}
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	u, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	sess := &Session{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	token, err := signAccessToken(s.secret, u.ID, sess.ID, now, sess.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	s.log.Info("user signed in", zap.String("user_id", u.ID.String()))
	return &SignInResult{User: u, AccessToken: token, ExpiresAt: sess.ExpiresAt}, nil
}

// SignUp registers a new account.
func (s *Service) SignUp(ctx context.Context, email, password, confirm string) (*model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" || confirm == "" {
		return nil, &ValidationError{Msg: "all fields are required"}
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if password != confirm {
		return nil, &ValidationError{Msg: "passwords do not match"}
	}
	return s.CreateUser(ctx, email, password)
}

// CreateUser stores an account without the confirmation step. Used by the
// admin CLI.
func (s *Service) CreateUser(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.TrimSpace(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.CreateUser(ctx, &model.User{Email: email, PasswordHash: string(hash)})
	if errors.Is(err, store.ErrConflict) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// SetPassword replaces the user's password and revokes their sessions.
func (s *Service) SetPassword(ctx context.Context, userID uuid.UUID, password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdateUserPassword(ctx, userID, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if err := s.sessions.DeleteByUser(ctx, userID); err != nil {
		s.log.Warn("revoke sessions failed", zap.String("user_id", userID.String()), zap.Error(err))
	}
	return nil
}

// DeleteUser removes the account, its offers and its sessions.
func (s *Service) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if err := s.sessions.DeleteByUser(ctx, userID); err != nil {
		s.log.Warn("revoke sessions failed", zap.String("user_id", userID.String()), zap.Error(err))
	}
	return nil
}

// ─── Tokens ──────────────────────────────────────────────────────────────────

// CurrentUser resolves a token to its user. It returns (nil, nil) for an
// empty token and ErrUnauthenticated for any invalid one.
func (s *Service) CurrentUser(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, nil
	}
	claims, err := parseAccessToken(s.secret, token)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	sess, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess == nil || sess.UserID != claims.UserID {
		return nil, ErrUnauthenticated
	}

	u, err := s.users.GetUser(ctx, claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

// SignOut ends the token's session. Signing out an invalid or already
// closed session is not an error.
func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := parseAccessToken(s.secret, token)
	if err != nil {
		return nil
	}
	if err := s.sessions.Delete(ctx, claims.SessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// ─── Validation ──────────────────────────────────────────────────────────────

func validateEmail(email string) error {
	if !strings.Contains(email, "@") {
		return &ValidationError{Msg: "invalid email address format"}
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return &ValidationError{Msg: fmt.Sprintf("password must be at least %d characters long", minPasswordLength)}
	}
	return nil
}
