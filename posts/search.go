// Pure, client-side list shaping: search, author filter, and sort. These
// never touch the network and never mutate their input slices.
package posts

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// minSearchLength is the shortest query that actually filters. Anything
// shorter returns the input unchanged, so a single typed character does not
// blank out the list.
const minSearchLength = 2

// Search returns the posts whose title, content, or author name contains the
// query, case-insensitively. OR semantics across the three fields.
func Search(query string, list []Post) []Post {
	term := strings.ToLower(strings.TrimSpace(query))
	if utf8.RuneCountInString(term) < minSearchLength {
		return list
	}

	filtered := make([]Post, 0, len(list))
	for _, post := range list {
		if strings.Contains(strings.ToLower(post.Title), term) ||
			strings.Contains(strings.ToLower(post.Content), term) ||
			strings.Contains(strings.ToLower(post.AuthorName), term) {
			filtered = append(filtered, post)
		}
	}
	return filtered
}

// FilterByAuthor returns the posts whose author display name contains the
// given name, case-insensitively. An empty name returns the input unchanged.
func FilterByAuthor(authorName string, list []Post) []Post {
	name := strings.ToLower(strings.TrimSpace(authorName))
	if name == "" {
		return list
	}

	filtered := make([]Post, 0, len(list))
	for _, post := range list {
		if strings.Contains(strings.ToLower(post.AuthorName), name) {
			filtered = append(filtered, post)
		}
	}
	return filtered
}

// Sort returns a sorted copy of the list. Timestamp fields compare as dates,
// string fields case-insensitively; ascending places the smaller value
// first. The sort is stable, so equal elements keep their relative order.
func Sort(list []Post, by SortField, order SortOrder) []Post {
	sorted := make([]Post, len(list))
	copy(sorted, list)

	sort.SliceStable(sorted, func(i, j int) bool {
		less := lessByField(&sorted[i], &sorted[j], by)
		if order == SortAsc {
			return less
		}
		return lessByField(&sorted[j], &sorted[i], by)
	})
	return sorted
}

// lessByField reports whether a orders before b on the given field,
// ascending. Unknown fields fall back to creation time.
func lessByField(a, b *Post, by SortField) bool {
	switch by {
	case SortByUpdatedAt:
		return a.UpdatedAt.Before(b.UpdatedAt)
	case SortByTitle:
		return strings.ToLower(a.Title) < strings.ToLower(b.Title)
	case SortByAuthorName:
		return strings.ToLower(a.AuthorName) < strings.ToLower(b.AuthorName)
	default:
		return a.CreatedAt.Before(b.CreatedAt)
	}
}
