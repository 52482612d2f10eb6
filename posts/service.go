// Service layer for posts. Stateless pass-throughs to the gateway for the
// CRUD operations; the list-shaping helpers (search, filter, sort) live in
// search.go and are pure functions over in-memory slices.
package posts

import (
	"context"
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/user/blogclient-go/apperror"
	"github.com/user/blogclient-go/gateway"
)

// messageResponse is the generic message body used by endpoints that return
// no resource.
type messageResponse struct {
	Message string `json:"message"`
}

// Service provides post operations against the blog API.
type Service struct {
	gw       *gateway.Client
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewService creates a post Service.
func NewService(gw *gateway.Client, logger zerolog.Logger) *Service {
	return &Service{
		gw:       gw,
		validate: validator.New(),
		logger:   logger.With().Str("component", "posts").Logger(),
	}
}

// GetAll fetches every post.
func (s *Service) GetAll(ctx context.Context) ([]Post, error) {
	var list []Post
	if err := s.gw.Get(ctx, "/posts", &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []Post{}
	}
	return list, nil
}

// GetByAuthor fetches the posts of a single author, identified by the author
// key (email).
func (s *Service) GetByAuthor(ctx context.Context, authorID string) ([]Post, error) {
	var list []Post
	if err := s.gw.Get(ctx, "/posts/author/"+url.PathEscape(authorID), &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []Post{}
	}
	return list, nil
}

// GetByID fetches a single post.
func (s *Service) GetByID(ctx context.Context, id string) (*Post, error) {
	var post Post
	if err := s.gw.Get(ctx, "/posts/"+url.PathEscape(id), &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// Create submits a new post as a multipart form (title, content, optional
// image) and returns the server's representation of the created post.
func (s *Service) Create(ctx context.Context, input PostInput, image *ImageFile) (*Post, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, apperror.NewValidationError("title must be at least 3 and content at least 10 characters", err)
	}
	if err := image.Validate(); err != nil {
		return nil, apperror.NewValidationError(err.Error(), nil)
	}

	var created Post
	if err := s.gw.PostMultipart(ctx, "/posts/create", formFields(input), uploadFor(image), &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update replaces a post's editable fields, again as a multipart form, and
// returns the server's updated representation.
func (s *Service) Update(ctx context.Context, id string, input PostInput, image *ImageFile) (*Post, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, apperror.NewValidationError("title must be at least 3 and content at least 10 characters", err)
	}
	if err := image.Validate(); err != nil {
		return nil, apperror.NewValidationError(err.Error(), nil)
	}

	var updated Post
	if err := s.gw.PutMultipart(ctx, "/posts/"+url.PathEscape(id), formFields(input), uploadFor(image), &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a post and returns the server's confirmation message.
func (s *Service) Delete(ctx context.Context, id string) (string, error) {
	var resp messageResponse
	if err := s.gw.Delete(ctx, "/posts/"+url.PathEscape(id), &resp); err != nil {
		return "", err
	}
	if resp.Message == "" {
		resp.Message = "post deleted successfully"
	}
	return resp.Message, nil
}

func formFields(input PostInput) map[string]string {
	return map[string]string{
		"title":   input.Title,
		"content": input.Content,
	}
}

func uploadFor(image *ImageFile) *gateway.Upload {
	if image == nil {
		return nil
	}
	return &gateway.Upload{
		FieldName:   "image",
		FileName:    image.Name,
		ContentType: image.ContentType,
		Data:        image.Data,
	}
}
