// Package posts covers the post side of the client: CRUD calls against the
// blog API, pure client-side search/filter/sort helpers, and the reactive
// store that mirrors the fetched collection.
package posts

import "time"

// Post mirrors the server's post representation. AuthorID is the author's
// email and is the value ownership checks compare against.
type Post struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	ImageURL   string    `json:"imageUrl,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	ViewCount  int64     `json:"viewCount,omitempty"`
}

// SortField selects the comparison key for sorting.
type SortField string

const (
	// SortByCreatedAt orders by creation time.
	SortByCreatedAt SortField = "createdAt"
	// SortByUpdatedAt orders by last update time.
	SortByUpdatedAt SortField = "updatedAt"
	// SortByTitle orders by title, case-insensitively.
	SortByTitle SortField = "title"
	// SortByAuthorName orders by author display name, case-insensitively.
	SortByAuthorName SortField = "authorName"
)

// SortOrder selects ascending or descending order.
type SortOrder string

const (
	// SortAsc places smaller values first.
	SortAsc SortOrder = "asc"
	// SortDesc places larger values first.
	SortDesc SortOrder = "desc"
)
