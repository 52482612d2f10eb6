// Service layer for authentication. Stateless: every call either goes
// through the gateway or reads durable storage synchronously. The reactive
// session state lives in Store; the service is the piece that knows the wire
// and storage formats.
package auth

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/user/blogclient-go/apperror"
	"github.com/user/blogclient-go/gateway"
	"github.com/user/blogclient-go/storage"
)

// Endpoint paths under the API base URL.
const (
	loginPath    = "/auth/login"
	registerPath = "/auth/register"
)

// Service provides authentication operations against the blog API plus
// synchronous access to the persisted session.
type Service struct {
	gw       *gateway.Client
	store    storage.Store
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewService creates an auth Service. Dependencies are injected explicitly;
// nothing here is a process-wide singleton.
func NewService(gw *gateway.Client, store storage.Store, logger zerolog.Logger) *Service {
	return &Service{
		gw:       gw,
		store:    store,
		validate: validator.New(),
		logger:   logger.With().Str("component", "auth").Logger(),
	}
}

// Login exchanges credentials for a token. On success the session (token and
// constructed user) is persisted to durable storage and returned. The server
// response carries username and role but not the email, so the user is
// completed from the submitted credentials.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*Credentials, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperror.NewValidationError("please provide a valid email and a password of at least 6 characters", err)
	}

	var resp LoginResponse
	if err := s.gw.PostJSON(ctx, loginPath, req, &resp); err != nil {
		return nil, err
	}

	if resp.Token == "" || resp.Username == "" || resp.Role == "" {
		return nil, apperror.NewServerError("invalid response format", nil)
	}

	user := User{
		Name: resp.Username,
		// Emails are stored lowercase so ownership comparisons are stable.
		Email: strings.ToLower(strings.TrimSpace(req.Email)),
		Role:  resp.Role,
	}

	if err := s.persistSession(resp.Token, user); err != nil {
		return nil, apperror.NewAppError(apperror.UnknownError, "failed to save session", err)
	}

	s.logger.Info().Str("email", user.Email).Str("role", string(user.Role)).Msg("logged in")
	return &Credentials{Token: resp.Token, User: user}, nil
}

// Register creates a new account. It returns the server's confirmation
// message and never establishes a session.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (string, error) {
	if err := s.validate.Struct(req); err != nil {
		return "", apperror.NewValidationError("please fill in all registration fields correctly", err)
	}

	var resp MessageResponse
	if err := s.gw.PostJSON(ctx, registerPath, req, &resp); err != nil {
		return "", err
	}
	if resp.Message == "" {
		resp.Message = "account created successfully"
	}
	return resp.Message, nil
}

// Logout clears the durable session. It always succeeds from the caller's
// point of view; storage failures are logged and swallowed because there is
// nothing sensible a user can do about them.
func (s *Service) Logout() {
	if err := storage.ClearSession(s.store); err != nil {
		s.logger.Error().Err(err).Msg("failed to clear stored session")
	}
}

// Token returns the persisted bearer token, or "" when signed out.
func (s *Service) Token() string {
	token, ok, err := s.store.Get(storage.KeyToken)
	if err != nil || !ok {
		return ""
	}
	return token
}

// CurrentUser returns the persisted user, or nil when signed out or when the
// stored entry cannot be decoded.
func (s *Service) CurrentUser() *User {
	raw, ok, err := s.store.Get(storage.KeyUser)
	if err != nil || !ok || raw == "" {
		return nil
	}
	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil
	}
	return &user
}

// IsAuthenticated reports whether both a token and a user are persisted.
func (s *Service) IsAuthenticated() bool {
	return s.Token() != "" && s.CurrentUser() != nil
}

// HasRole reports whether the persisted user carries the given role.
func (s *Service) HasRole(role Role) bool {
	user := s.CurrentUser()
	return user != nil && user.Role == role
}

// IsAdmin reports whether the persisted user is an admin.
func (s *Service) IsAdmin() bool {
	return s.HasRole(RoleAdmin)
}

// IsAuthor reports whether the persisted user is an author.
func (s *Service) IsAuthor() bool {
	return s.HasRole(RoleAuthor)
}

// ValidateToken performs a purely structural check of a JWT: exactly three
// dot-separated segments, a decodable claims segment, and an exp claim (when
// present) that has not passed. No signature verification happens here and
// none is intended; the server is the sole authority on token validity.
// This check only exists to avoid sending obviously expired tokens.
func (s *Service) ValidateToken(token string) bool {
	if token == "" {
		return false
	}
	if strings.Count(token, ".") != 2 {
		return false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return false
	}
	if exp != nil && exp.Before(time.Now()) {
		return false
	}
	return true
}

// RefreshUserData re-reads the persisted user after re-checking the stored
// token. An invalid or expired token forces a logout and yields nil. There
// is no refresh endpoint, so a valid token simply returns the stored user
// unchanged.
func (s *Service) RefreshUserData() *User {
	token := s.Token()
	if token == "" || !s.ValidateToken(token) {
		s.Logout()
		return nil
	}
	return s.CurrentUser()
}

// persistSession writes both session entries to durable storage.
func (s *Service) persistSession(token string, user User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := s.store.Set(storage.KeyToken, token); err != nil {
		return err
	}
	return s.store.Set(storage.KeyUser, string(raw))
}

// PersistUser rewrites only the stored user entry, keeping the token. Used
// by the store after profile edits.
func (s *Service) PersistUser(user User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.store.Set(storage.KeyUser, string(raw))
}
