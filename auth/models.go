// Package auth handles the client side of authentication: exchanging
// credentials for a token, persisting the session, and answering role and
// ownership questions for the rest of the application.
package auth

// Role is the authorization level assigned to a user by the server.
type Role string

const (
	// RoleAdmin may modify any post.
	RoleAdmin Role = "ADMIN"
	// RoleAuthor may modify only their own posts.
	RoleAuthor Role = "AUTHOR"
)

// User represents the signed-in user as mirrored from the server's login
// response. The email doubles as the stable identity: it is the value
// compared against a post's author key for ownership checks.
type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// IsAuthor reports whether the user carries the author role.
func (u *User) IsAuthor() bool {
	return u != nil && u.Role == RoleAuthor
}
