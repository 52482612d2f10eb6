// Data transfer objects for the authentication endpoints. The validate tags
// reject obviously bad input locally, before a request is ever built; the
// server remains the authority on what is actually accepted.
package auth

// LoginRequest is the payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// RegisterRequest is the payload for POST /auth/register. Registration never
// establishes a session; the server requires a separate login afterwards.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     Role   `json:"role" validate:"required,oneof=ADMIN AUTHOR"`
}

// LoginResponse is the body returned by POST /auth/login. The server does
// not echo the email back; the client completes the User from the submitted
// credentials.
type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// MessageResponse is the generic message body returned by endpoints that do
// not return a resource (register, delete).
type MessageResponse struct {
	Message string `json:"message"`
}

// Credentials is the result of a successful login: the issued token and the
// user constructed from the response.
type Credentials struct {
	Token string
	User  User
}

// ProfileUpdate carries a partial profile edit. Nil fields are left
// untouched by the shallow merge.
type ProfileUpdate struct {
	Name  *string
	Email *string
}
