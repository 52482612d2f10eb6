// Package mockapi is an in-memory implementation of the blog REST API the
// client consumes. It exists for two reasons: the test suite runs the real
// client against it over HTTP, and `blogctl mock-server` serves it locally
// so the client can be exercised without a deployed backend. State lives in
// maps guarded by a mutex and is lost on shutdown; persistence is
// deliberately out of scope for a test double.
package mockapi

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/blogclient-go/posts"
)

// Options configures the mock server.
type Options struct {
	// JWTSecret signs issued tokens. Dev/test only.
	JWTSecret string
	// TokenDuration is the lifetime of issued tokens.
	TokenDuration time.Duration
}

// account is a registered user with a hashed password.
type account struct {
	Name         string
	Email        string
	Role         string
	PasswordHash []byte
}

// Server holds the in-memory state behind the API.
type Server struct {
	jwtSecret     []byte
	tokenDuration time.Duration

	mu       sync.Mutex
	accounts map[string]*account    // keyed by lowercase email
	posts    map[string]*posts.Post // keyed by post ID
	order    []string               // post IDs, insertion order
	uploads  map[string][]byte      // served under /uploads
	now      func() time.Time
}

// New creates an empty mock server.
func New(opts Options) *Server {
	if opts.TokenDuration == 0 {
		opts.TokenDuration = 24 * time.Hour
	}
	return &Server{
		jwtSecret:     []byte(opts.JWTSecret),
		tokenDuration: opts.TokenDuration,
		accounts:      make(map[string]*account),
		posts:         make(map[string]*posts.Post),
		uploads:       make(map[string][]byte),
		now:           time.Now,
	}
}

// Handler returns the HTTP handler: the API under /api, uploaded images
// under /uploads.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/register", s.handleRegister)

		r.Get("/posts", s.handleListPosts)
		r.Get("/posts/author/{authorID}", s.handlePostsByAuthor)
		r.Get("/posts/{id}", s.handleGetPost)

		// Mutations require a valid bearer token.
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/posts/create", s.handleCreatePost)
			r.Put("/posts/{id}", s.handleUpdatePost)
			r.Delete("/posts/{id}", s.handleDeletePost)
		})
	})

	r.Get("/uploads/{name}", s.handleUpload)

	return r
}

// SeedUser registers an account directly, for tests and dev fixtures.
func (s *Server) SeedUser(name, email, password, role string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[normalizeEmail(email)] = &account{
		Name:         name,
		Email:        normalizeEmail(email),
		Role:         role,
		PasswordHash: hash,
	}
	return nil
}

// SeedPost inserts a post directly, for tests and dev fixtures.
func (s *Server) SeedPost(post posts.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := post
	s.posts[stored.ID] = &stored
	s.order = append(s.order, stored.ID)
}

// listPostsLocked returns the posts in insertion order. Callers must hold s.mu.
func (s *Server) listPostsLocked() []posts.Post {
	out := make([]posts.Post, 0, len(s.order))
	for _, id := range s.order {
		if post, ok := s.posts[id]; ok {
			out = append(out, *post)
		}
	}
	// Newest first, the way the real backend serves the list.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// handleUpload serves stored image bytes.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	s.mu.Lock()
	data, ok := s.uploads[name]
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(data)
}
