package mockapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/blogclient-go/apperror"
)

// claims is the JWT payload issued by the mock server. The email subject is
// what post ownership is checked against.
type claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type contextKey string

const claimsKey contextKey = "mockapi_claims"

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// issueToken creates a signed HS256 token for the account.
func (s *Server) issueToken(acc *account) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims{
		Email: acc.Email,
		Name:  acc.Name,
		Role:  acc.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   acc.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenDuration)),
			Issuer:    "blog-mockapi",
		},
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// handleLogin implements POST /auth/login. The response carries the token,
// the display name and the role, but not the email, which the client already has.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.NewBadRequestError("invalid request body", err))
		return
	}

	s.mu.Lock()
	acc := s.accounts[normalizeEmail(req.Email)]
	s.mu.Unlock()

	// One message for unknown email and wrong password alike.
	if acc == nil || bcrypt.CompareHashAndPassword(acc.PasswordHash, []byte(req.Password)) != nil {
		writeError(w, apperror.NewAuthError("invalid email or password", nil))
		return
	}

	token, err := s.issueToken(acc)
	if err != nil {
		writeError(w, apperror.NewServerError("failed to issue token", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"token":    token,
		"username": acc.Name,
		"role":     acc.Role,
	})
}

// handleRegister implements POST /auth/register. Registration never returns
// a token; the client is expected to log in separately.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.NewBadRequestError("invalid request body", err))
		return
	}

	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, apperror.NewBadRequestError("name, email and password are required", nil))
		return
	}
	if req.Role == "" {
		req.Role = "AUTHOR"
	}
	if req.Role != "ADMIN" && req.Role != "AUTHOR" {
		writeError(w, apperror.NewBadRequestError("role must be ADMIN or AUTHOR", nil))
		return
	}

	email := normalizeEmail(req.Email)

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		writeError(w, apperror.NewServerError("failed to hash password", err))
		return
	}

	s.mu.Lock()
	if _, exists := s.accounts[email]; exists {
		s.mu.Unlock()
		writeError(w, apperror.NewBadRequestError("email already registered", nil))
		return
	}
	s.accounts[email] = &account{Name: req.Name, Email: email, Role: req.Role, PasswordHash: hash}
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]string{"message": "account created successfully"})
}

// requireAuth verifies the bearer token and stores its claims in the request
// context for the handlers behind it.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, apperror.NewAuthError("authorization header is missing", nil))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			writeError(w, apperror.NewAuthError("authorization header format must be Bearer {token}", nil))
			return
		}

		tokenClaims := &claims{}
		token, err := jwt.ParseWithClaims(parts[1], tokenClaims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.jwtSecret, nil
		})
		if err != nil || !token.Valid {
			writeError(w, apperror.NewAuthError("invalid or expired token", err))
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, tokenClaims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// claimsFrom extracts the verified claims placed by requireAuth.
func claimsFrom(ctx context.Context) *claims {
	c, _ := ctx.Value(claimsKey).(*claims)
	return c
}
