// Store is the reactive container for the fetched post collection. It owns
// the in-memory list: fetches replace it, create/update/delete patch it
// optimistically in place, mirroring the assumed-successful server mutation
// without a re-fetch. The filtered view is a derived projection recomputed
// whenever the query, the sort parameters, or the base list change.
//
// Busy flags are tracked per operation kind so a consumer can disable only
// the relevant controls. Actions are not queued or de-duplicated: two
// concurrent mutations race and the last response to resolve wins, which is
// an accepted property of this client.
package posts

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/user/blogclient-go/apperror"
	"github.com/user/blogclient-go/notify"
)

// Snapshot is a point-in-time copy of the post state.
type Snapshot struct {
	Posts       []Post
	Filtered    []Post
	CurrentPost *Post
	SearchQuery string
	SortBy      SortField
	SortOrder   SortOrder
	IsLoading   bool
	IsCreating  bool
	IsUpdating  bool
	IsDeleting  bool
	Err         string
}

// Store holds the post collection and its derived filtered/sorted view.
type Store struct {
	service  *Service
	notifier *notify.Notifier
	logger   zerolog.Logger

	mu          sync.RWMutex
	posts       []Post
	filtered    []Post
	currentPost *Post
	searchQuery string
	sortBy      SortField
	sortOrder   SortOrder
	loading     bool
	creating    bool
	updating    bool
	deleting    bool
	errMsg      string
}

// NewStore creates a post Store with the default sort: newest first.
func NewStore(service *Service, notifier *notify.Notifier, logger zerolog.Logger) *Store {
	return &Store{
		service:   service,
		notifier:  notifier,
		logger:    logger.With().Str("component", "post-store").Logger(),
		posts:     []Post{},
		filtered:  []Post{},
		sortBy:    SortByCreatedAt,
		sortOrder: SortDesc,
	}
}

// FetchAll loads every post. On success the base list and the filtered view
// are both replaced with the list sorted by the current sort parameters; on
// failure the existing lists are left untouched and only the error is set.
func (s *Store) FetchAll(ctx context.Context) error {
	s.setFlag(&s.loading, true)

	list, err := s.service.GetAll(ctx)
	if err != nil {
		s.failFetch(err, "failed to load posts")
		return err
	}

	s.mu.Lock()
	sorted := Sort(list, s.sortBy, s.sortOrder)
	s.posts = sorted
	s.filtered = sorted
	s.searchQuery = ""
	s.loading = false
	s.errMsg = ""
	s.mu.Unlock()
	return nil
}

// FetchByAuthor loads the posts of one author, with the same list handling
// as FetchAll.
func (s *Store) FetchByAuthor(ctx context.Context, authorID string) error {
	s.setFlag(&s.loading, true)

	list, err := s.service.GetByAuthor(ctx, authorID)
	if err != nil {
		s.failFetch(err, "failed to load posts")
		return err
	}

	s.mu.Lock()
	sorted := Sort(list, s.sortBy, s.sortOrder)
	s.posts = sorted
	s.filtered = sorted
	s.searchQuery = ""
	s.loading = false
	s.errMsg = ""
	s.mu.Unlock()
	return nil
}

// FetchOne loads a single post into the current-post slot. It is
// independent of the list: the base collection is never touched here.
func (s *Store) FetchOne(ctx context.Context, id string) (*Post, error) {
	s.setFlag(&s.loading, true)

	post, err := s.service.GetByID(ctx, id)

	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.currentPost = nil
		s.errMsg = apperror.UserMessage(err, "failed to load post")
	} else {
		s.currentPost = post
		s.errMsg = ""
	}
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return post, nil
}

// Create submits a new post. On success the server's returned representation
// is prepended to both the base list and the filtered view. The current
// search filter is deliberately not re-applied: a post the user just wrote
// stays visible even if it would not match the active query.
func (s *Store) Create(ctx context.Context, input PostInput, image *ImageFile) (*Post, error) {
	s.setFlag(&s.creating, true)

	created, err := s.service.Create(ctx, input, image)
	if err != nil {
		s.failMutation(&s.creating, err, "failed to create post")
		return nil, err
	}

	s.mu.Lock()
	s.posts = prepend(*created, s.posts)
	s.filtered = prepend(*created, s.filtered)
	s.creating = false
	s.errMsg = ""
	s.mu.Unlock()

	s.notifier.Success("post created successfully")
	return created, nil
}

// Update replaces the post's editable fields. On success the matching post
// is swapped by id in both lists and becomes the current post; an id that is
// no longer present leaves the lists unchanged.
func (s *Store) Update(ctx context.Context, id string, input PostInput, image *ImageFile) (*Post, error) {
	s.setFlag(&s.updating, true)

	updated, err := s.service.Update(ctx, id, input, image)
	if err != nil {
		s.failMutation(&s.updating, err, "failed to update post")
		return nil, err
	}

	s.mu.Lock()
	s.posts = replaceByID(s.posts, id, *updated)
	s.filtered = replaceByID(s.filtered, id, *updated)
	s.currentPost = updated
	s.updating = false
	s.errMsg = ""
	s.mu.Unlock()

	s.notifier.Success("post updated successfully")
	return updated, nil
}

// Delete removes a post. On success the matching post disappears from both
// lists and the current-post slot is cleared.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.setFlag(&s.deleting, true)

	message, err := s.service.Delete(ctx, id)
	if err != nil {
		s.failMutation(&s.deleting, err, "failed to delete post")
		return err
	}

	s.mu.Lock()
	s.posts = removeByID(s.posts, id)
	s.filtered = removeByID(s.filtered, id)
	s.currentPost = nil
	s.deleting = false
	s.errMsg = ""
	s.mu.Unlock()

	s.notifier.Success(message)
	return nil
}

// SetSearch stores the query and recomputes the filtered view from the base
// list. Queries shorter than two characters leave the view equal to the
// base list.
func (s *Store) SetSearch(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchQuery = query
	s.filtered = Search(query, s.posts)
}

// SortPosts stores the sort parameters and resorts the filtered view. Only
// the view is resorted; the base list keeps its order until the next fetch.
func (s *Store) SortPosts(by SortField, order SortOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sortBy = by
	s.sortOrder = order
	s.filtered = Sort(s.filtered, by, order)
}

// Snapshot returns a copy of the current post state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var current *Post
	if s.currentPost != nil {
		c := *s.currentPost
		current = &c
	}
	return Snapshot{
		Posts:       copyList(s.posts),
		Filtered:    copyList(s.filtered),
		CurrentPost: current,
		SearchQuery: s.searchQuery,
		SortBy:      s.sortBy,
		SortOrder:   s.sortOrder,
		IsLoading:   s.loading,
		IsCreating:  s.creating,
		IsUpdating:  s.updating,
		IsDeleting:  s.deleting,
		Err:         s.errMsg,
	}
}

// Posts returns a copy of the base list.
func (s *Store) Posts() []Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyList(s.posts)
}

// Filtered returns a copy of the derived filtered/sorted view.
func (s *Store) Filtered() []Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyList(s.filtered)
}

// Current returns a copy of the current post, or nil.
func (s *Store) Current() *Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.currentPost == nil {
		return nil
	}
	c := *s.currentPost
	return &c
}

// failFetch records a fetch failure without touching the lists. Gateway
// failures already produced a user notification; only locally rejected
// input (which never reached the gateway) is notified here.
func (s *Store) failFetch(err error, fallback string) {
	message := apperror.UserMessage(err, fallback)
	s.mu.Lock()
	s.loading = false
	s.errMsg = message
	s.mu.Unlock()
	if apperror.IsValidationError(err) {
		s.notifier.Error(message)
	}
}

// failMutation records a create/update/delete failure. Lists are never
// mutated on failure.
func (s *Store) failMutation(flag *bool, err error, fallback string) {
	message := apperror.UserMessage(err, fallback)
	s.mu.Lock()
	*flag = false
	s.errMsg = message
	s.mu.Unlock()
	if apperror.IsValidationError(err) {
		s.notifier.Error(message)
	}
}

func (s *Store) setFlag(flag *bool, value bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	*flag = value
	if value {
		s.errMsg = ""
	}
}

func prepend(post Post, list []Post) []Post {
	out := make([]Post, 0, len(list)+1)
	out = append(out, post)
	return append(out, list...)
}

func replaceByID(list []Post, id string, replacement Post) []Post {
	out := make([]Post, len(list))
	copy(out, list)
	for i := range out {
		if out[i].ID == id {
			out[i] = replacement
		}
	}
	return out
}

func removeByID(list []Post, id string) []Post {
	out := make([]Post, 0, len(list))
	for _, post := range list {
		if post.ID != id {
			out = append(out, post)
		}
	}
	return out
}

func copyList(list []Post) []Post {
	out := make([]Post, len(list))
	copy(out, list)
	return out
}
