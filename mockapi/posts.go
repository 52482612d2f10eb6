package mockapi

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/user/blogclient-go/apperror"
	"github.com/user/blogclient-go/posts"
)

// maxUploadBytes bounds multipart parsing, matching the 5 MiB image limit
// plus headroom for the text fields.
const maxUploadBytes = 6 << 20

var mockAllowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

// handleListPosts implements GET /posts.
func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	list := s.listPostsLocked()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, list)
}

// handlePostsByAuthor implements GET /posts/author/{authorID}. The author ID
// is the author's email.
func (s *Server) handlePostsByAuthor(w http.ResponseWriter, r *http.Request) {
	authorID := normalizeEmail(chi.URLParam(r, "authorID"))

	s.mu.Lock()
	all := s.listPostsLocked()
	s.mu.Unlock()

	list := make([]posts.Post, 0, len(all))
	for _, post := range all {
		if normalizeEmail(post.AuthorID) == authorID {
			list = append(list, post)
		}
	}
	writeJSON(w, http.StatusOK, list)
}

// handleGetPost implements GET /posts/{id}. Each read increments the view
// count, a server-derived field the client deliberately does not re-fetch
// after mutations.
func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	post, ok := s.posts[id]
	if ok {
		post.ViewCount++
	}
	var copied posts.Post
	if ok {
		copied = *post
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, apperror.NewNotFoundError("post not found", nil))
		return
	}
	writeJSON(w, http.StatusOK, copied)
}

// handleCreatePost implements POST /posts/create (multipart).
func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	who := claimsFrom(r.Context())

	input, imageURL, appErr := s.readPostForm(r)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	now := s.now()
	post := posts.Post{
		ID:         uuid.New().String(),
		Title:      input.Title,
		Content:    input.Content,
		AuthorID:   who.Email,
		AuthorName: who.Name,
		ImageURL:   imageURL,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	s.mu.Lock()
	stored := post
	s.posts[post.ID] = &stored
	s.order = append(s.order, post.ID)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, post)
}

// handleUpdatePost implements PUT /posts/{id} (multipart). Admins may update
// any post; authors only their own.
func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	who := claimsFrom(r.Context())
	id := chi.URLParam(r, "id")

	input, imageURL, appErr := s.readPostForm(r)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	s.mu.Lock()
	post, ok := s.posts[id]
	if !ok {
		s.mu.Unlock()
		writeError(w, apperror.NewNotFoundError("post not found", nil))
		return
	}
	if who.Role != "ADMIN" && normalizeEmail(post.AuthorID) != who.Email {
		s.mu.Unlock()
		writeError(w, apperror.NewForbiddenError("you may only modify your own posts", nil))
		return
	}
	post.Title = input.Title
	post.Content = input.Content
	if imageURL != "" {
		post.ImageURL = imageURL
	}
	post.UpdatedAt = s.now()
	copied := *post
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, copied)
}

// handleDeletePost implements DELETE /posts/{id}, with the same ownership
// rule as update.
func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	who := claimsFrom(r.Context())
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	post, ok := s.posts[id]
	if !ok {
		s.mu.Unlock()
		writeError(w, apperror.NewNotFoundError("post not found", nil))
		return
	}
	if who.Role != "ADMIN" && normalizeEmail(post.AuthorID) != who.Email {
		s.mu.Unlock()
		writeError(w, apperror.NewForbiddenError("you may only modify your own posts", nil))
		return
	}
	delete(s.posts, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"message": "post deleted successfully"})
}

// readPostForm parses the multipart body shared by create and update:
// required title and content fields plus an optional image. On success it
// returns the input and the URL of the stored image ("" when none was sent).
func (s *Server) readPostForm(r *http.Request) (posts.PostInput, string, *apperror.AppError) {
	var input posts.PostInput

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return input, "", apperror.NewBadRequestError("invalid multipart form", err)
	}

	input.Title = strings.TrimSpace(r.FormValue("title"))
	input.Content = strings.TrimSpace(r.FormValue("content"))
	if input.Title == "" || input.Content == "" {
		return input, "", apperror.NewBadRequestError("title and content are required", nil)
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		if err == http.ErrMissingFile {
			return input, "", nil
		}
		return input, "", apperror.NewBadRequestError("invalid image upload", err)
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType != "" && !mockAllowedImageTypes[strings.ToLower(contentType)] {
		return input, "", apperror.NewBadRequestError("please select a valid image file (JPEG, PNG, WebP)", nil)
	}

	data, err := io.ReadAll(io.LimitReader(file, posts.MaxImageSize+1))
	if err != nil {
		return input, "", apperror.NewBadRequestError("failed to read image upload", err)
	}
	if len(data) > posts.MaxImageSize {
		return input, "", apperror.NewBadRequestError("file size should be less than 5MB", nil)
	}

	name := uuid.New().String() + strings.ToLower(filepath.Ext(header.Filename))
	s.mu.Lock()
	s.uploads[name] = data
	s.mu.Unlock()

	return input, fmt.Sprintf("/uploads/%s", name), nil
}
