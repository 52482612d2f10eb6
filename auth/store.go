// Store is the reactive session state container. It is the only writer of
// the in-memory session and upholds the invariant that isAuthenticated is
// true exactly when both a user and a token are held. It is created once at
// the application root and passed down explicitly, deliberately not a
// package-level singleton, so tests can run isolated instances.
package auth

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/user/blogclient-go/apperror"
	"github.com/user/blogclient-go/notify"
	"github.com/user/blogclient-go/posts"
)

// Snapshot is a point-in-time copy of the session state, safe to hand to a
// presentation layer.
type Snapshot struct {
	User            *User
	Token           string
	IsAuthenticated bool
	IsLoading       bool
	Err             string
}

// Store holds the current session: anonymous → authenticating →
// authenticated (or back to anonymous on failure), and authenticated →
// anonymous on logout or session expiry.
type Store struct {
	service  *Service
	notifier *notify.Notifier
	logger   zerolog.Logger

	mu            sync.RWMutex
	user          *User
	token         string
	authenticated bool
	loading       bool
	errMsg        string
}

// NewStore creates an auth Store around the given service.
func NewStore(service *Service, notifier *notify.Notifier, logger zerolog.Logger) *Store {
	return &Store{
		service:  service,
		notifier: notifier,
		logger:   logger.With().Str("component", "auth-store").Logger(),
	}
}

// Initialize loads the session from durable storage. A structurally valid
// token restores the authenticated state; anything else force-clears storage
// and leaves the store anonymous. Expected to run once at process start.
func (s *Store) Initialize() {
	token := s.service.Token()
	user := s.service.CurrentUser()

	s.mu.Lock()
	defer s.mu.Unlock()

	if token != "" && user != nil && s.service.ValidateToken(token) {
		s.user = user
		s.token = token
		s.authenticated = true
		s.errMsg = ""
		s.logger.Debug().Str("email", user.Email).Msg("session restored from storage")
		return
	}

	// Stale or partial session data: clear it rather than carry it around.
	s.service.Logout()
	s.setAnonymousLocked("")
}

// Login authenticates against the server. On success the store transitions
// to authenticated and a success notification fires; on failure it returns
// to anonymous, records the error for display and fires a failure
// notification. The returned error lets the caller branch on the outcome.
func (s *Store) Login(ctx context.Context, req LoginRequest) error {
	s.setLoading(true)

	creds, err := s.service.Login(ctx, req)
	if err != nil {
		message := apperror.UserMessage(err, "invalid email or password")
		if apperror.IsAuthError(err) {
			// A 401 here means rejected credentials, not an expired session.
			message = "invalid email or password"
		}
		s.mu.Lock()
		s.setAnonymousLocked(message)
		s.loading = false
		s.mu.Unlock()

		s.notifier.Error(message)
		return err
	}

	s.mu.Lock()
	s.user = &creds.User
	s.token = creds.Token
	s.authenticated = true
	s.loading = false
	s.errMsg = ""
	s.mu.Unlock()

	s.notifier.Success("successfully logged in")
	return nil
}

// Register creates an account. Authentication state never changes here:
// registration does not log the user in.
func (s *Store) Register(ctx context.Context, req RegisterRequest) error {
	s.setLoading(true)

	message, err := s.service.Register(ctx, req)

	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.errMsg = apperror.UserMessage(err, "registration failed, please try again")
	} else {
		s.errMsg = ""
	}
	s.mu.Unlock()

	if err != nil {
		s.notifier.Error(apperror.UserMessage(err, "registration failed, please try again"))
		return err
	}
	s.notifier.Success(message)
	return nil
}

// Logout clears durable storage and local state synchronously.
func (s *Store) Logout() {
	s.service.Logout()

	s.mu.Lock()
	s.setAnonymousLocked("")
	s.loading = false
	s.mu.Unlock()

	s.notifier.Success("logged out successfully")
}

// Invalidate drops the local session without touching storage or notifying.
// The application root calls it on the session-expiry signal, after the
// gateway has already cleared storage and notified the user.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setAnonymousLocked("session expired")
}

// Refresh re-validates the stored token and re-reads the user. An invalid
// token clears the session.
func (s *Store) Refresh() {
	refreshed := s.service.RefreshUserData()

	s.mu.Lock()
	defer s.mu.Unlock()

	if refreshed == nil {
		s.setAnonymousLocked("session expired")
		return
	}
	s.user = refreshed
	s.authenticated = s.token != ""
	s.errMsg = ""
}

// UpdateUser shallow-merges a profile edit into the current user and
// re-persists the stored entry. A no-op when signed out.
func (s *Store) UpdateUser(update ProfileUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return
	}
	merged := *s.user
	if update.Name != nil {
		merged.Name = *update.Name
	}
	if update.Email != nil {
		merged.Email = *update.Email
	}
	if err := s.service.PersistUser(merged); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist profile update")
		return
	}
	s.user = &merged
}

// CanModifyPost is the authorization predicate for edit/delete controls:
// true for an admin session regardless of author, true for an author session
// on their own posts, false otherwise, including when there is no user or
// no post.
func (s *Store) CanModifyPost(post *posts.Post) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil || post == nil {
		return false
	}
	if s.user.Role == RoleAdmin {
		return true
	}
	return post.AuthorID == s.user.Email
}

// Snapshot returns a copy of the current session state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var user *User
	if s.user != nil {
		u := *s.user
		user = &u
	}
	return Snapshot{
		User:            user,
		Token:           s.token,
		IsAuthenticated: s.authenticated,
		IsLoading:       s.loading,
		Err:             s.errMsg,
	}
}

// IsAuthenticated reports whether a session is active.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// CurrentUser returns a copy of the signed-in user, or nil.
func (s *Store) CurrentUser() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// HasRole reports whether the signed-in user carries the given role.
func (s *Store) HasRole(role Role) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.user.Role == role
}

// IsAdmin reports whether the signed-in user is an admin.
func (s *Store) IsAdmin() bool {
	return s.HasRole(RoleAdmin)
}

// IsAuthor reports whether the signed-in user is an author.
func (s *Store) IsAuthor() bool {
	return s.HasRole(RoleAuthor)
}

// ClearError discards the recorded error message.
func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = ""
}

// setAnonymousLocked resets the session fields. Callers must hold s.mu.
func (s *Store) setAnonymousLocked(errMsg string) {
	s.user = nil
	s.token = ""
	s.authenticated = false
	s.errMsg = errMsg
}

func (s *Store) setLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
	if loading {
		s.errMsg = ""
	}
}
