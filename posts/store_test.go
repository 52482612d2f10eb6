package posts_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/blogclient-go/config"
	"github.com/user/blogclient-go/gateway"
	"github.com/user/blogclient-go/mockapi"
	"github.com/user/blogclient-go/notify"
	"github.com/user/blogclient-go/posts"
	"github.com/user/blogclient-go/storage"
)

// storeFixture wires the real client stack against an in-process API server.
type storeFixture struct {
	api      *mockapi.Server
	server   *httptest.Server
	storage  storage.Store
	notifier *notify.Notifier
	notifCh  <-chan notify.Notification
	store    *posts.Store
}

func newStoreFixture(t *testing.T) *storeFixture {
	t.Helper()

	api := mockapi.New(mockapi.Options{JWTSecret: "test-secret"})
	require.NoError(t, api.SeedUser("Alice", "alice@example.com", "password1", "AUTHOR"))

	server := httptest.NewServer(api.Handler())
	t.Cleanup(server.Close)

	mem := storage.NewMemoryStore()
	notifier := notify.NewNotifier()
	subID, notifCh := notifier.Subscribe()
	t.Cleanup(func() { notifier.Unsubscribe(subID) })

	gw := gateway.NewClient(&config.ClientConfig{
		BaseURL: server.URL + "/api",
		Timeout: 5 * time.Second,
	}, mem, notifier, zerolog.Nop())

	service := posts.NewService(gw, zerolog.Nop())

	return &storeFixture{
		api:      api,
		server:   server,
		storage:  mem,
		notifier: notifier,
		notifCh:  notifCh,
		store:    posts.NewStore(service, notifier, zerolog.Nop()),
	}
}

// login obtains a real token from the API and places it in storage, the same
// way a successful auth flow would.
func (f *storeFixture) login(t *testing.T, email, password string) {
	t.Helper()

	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	resp, err := http.Post(f.server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.NoError(t, f.storage.Set(storage.KeyToken, payload.Token))
}

func (f *storeFixture) seedThree() {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	f.api.SeedPost(posts.Post{ID: "1", Title: "Abstract Art", Content: "long enough content", AuthorID: "alice@example.com", AuthorName: "Alice", CreatedAt: base, UpdatedAt: base})
	f.api.SeedPost(posts.Post{ID: "2", Title: "Cooking", Content: "another long content", AuthorID: "bob@example.com", AuthorName: "Bob", CreatedAt: base.AddDate(0, 1, 0), UpdatedAt: base.AddDate(0, 1, 0)})
	f.api.SeedPost(posts.Post{ID: "3", Title: "Gardening", Content: "soil and seeds text", AuthorID: "alice@example.com", AuthorName: "Alice", CreatedAt: base.AddDate(0, 2, 0), UpdatedAt: base.AddDate(0, 2, 0)})
}

func (f *storeFixture) drain() []notify.Notification {
	var out []notify.Notification
	for {
		select {
		case n := <-f.notifCh:
			out = append(out, n)
		default:
			return out
		}
	}
}

func postIDs(list []posts.Post) []string {
	out := make([]string, len(list))
	for i, p := range list {
		out[i] = p.ID
	}
	return out
}

func TestFetchAllSortsNewestFirst(t *testing.T) {
	f := newStoreFixture(t)
	f.seedThree()

	require.NoError(t, f.store.FetchAll(context.Background()))

	snap := f.store.Snapshot()
	assert.Equal(t, []string{"3", "2", "1"}, postIDs(snap.Posts))
	assert.Equal(t, []string{"3", "2", "1"}, postIDs(snap.Filtered))
	assert.False(t, snap.IsLoading)
	assert.Empty(t, snap.Err)
}

func TestFetchByAuthorResetsSearch(t *testing.T) {
	f := newStoreFixture(t)
	f.seedThree()

	require.NoError(t, f.store.FetchAll(context.Background()))
	f.store.SetSearch("cooking")
	require.Len(t, f.store.Filtered(), 1)

	require.NoError(t, f.store.FetchByAuthor(context.Background(), "alice@example.com"))

	snap := f.store.Snapshot()
	assert.Equal(t, []string{"3", "1"}, postIDs(snap.Posts))
	assert.Empty(t, snap.SearchQuery)
	assert.Equal(t, snap.Posts, snap.Filtered)
}

func TestFetchFailureLeavesListsUntouched(t *testing.T) {
	f := newStoreFixture(t)
	f.seedThree()
	require.NoError(t, f.store.FetchAll(context.Background()))
	f.drain()

	f.server.Close()
	err := f.store.FetchAll(context.Background())
	require.Error(t, err)

	snap := f.store.Snapshot()
	assert.Equal(t, []string{"3", "2", "1"}, postIDs(snap.Posts))
	assert.Equal(t, "network error, please check your connection", snap.Err)
	assert.False(t, snap.IsLoading)

	// The gateway already told the user; the store must not double up.
	notifications := f.drain()
	require.Len(t, notifications, 1)
	assert.Equal(t, notify.LevelError, notifications[0].Level)
}

func TestCreatePrependsWithoutReapplyingFilter(t *testing.T) {
	f := newStoreFixture(t)
	f.seedThree()
	f.login(t, "alice@example.com", "password1")

	require.NoError(t, f.store.FetchAll(context.Background()))
	f.store.SetSearch("cooking")
	require.Equal(t, []string{"2"}, postIDs(f.store.Filtered()))
	f.drain()

	created, err := f.store.Create(context.Background(), posts.PostInput{
		Title:   "Fresh Post",
		Content: "content long enough to pass",
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "Fresh Post", created.Title)
	assert.Equal(t, "alice@example.com", created.AuthorID)

	snap := f.store.Snapshot()
	assert.Equal(t, created.ID, snap.Posts[0].ID)
	// Even though "Fresh Post" does not match the active query, it is
	// visible at the top of the filtered view.
	assert.Equal(t, []string{created.ID, "2"}, postIDs(snap.Filtered))

	notifications := f.drain()
	require.Len(t, notifications, 1)
	assert.Equal(t, notify.LevelSuccess, notifications[0].Level)
	assert.Equal(t, "post created successfully", notifications[0].Message)
}

func TestCreateRejectsInvalidInputLocally(t *testing.T) {
	f := newStoreFixture(t)
	f.drain()

	_, err := f.store.Create(context.Background(), posts.PostInput{Title: "ab", Content: "short"}, nil)
	require.Error(t, err)

	snap := f.store.Snapshot()
	assert.False(t, snap.IsCreating)
	assert.NotEmpty(t, snap.Err)

	// Local rejection never reached the gateway, so the store itself
	// publishes the one notification.
	notifications := f.drain()
	require.Len(t, notifications, 1)
	assert.Equal(t, notify.LevelError, notifications[0].Level)
}

func TestUpdateReplacesByIDEverywhere(t *testing.T) {
	f := newStoreFixture(t)
	f.seedThree()
	f.login(t, "alice@example.com", "password1")
	require.NoError(t, f.store.FetchAll(context.Background()))
	f.drain()

	updated, err := f.store.Update(context.Background(), "1", posts.PostInput{
		Title:   "Abstract Art Revisited",
		Content: "even longer revised content",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "1", updated.ID)

	snap := f.store.Snapshot()
	assert.Equal(t, []string{"3", "2", "1"}, postIDs(snap.Posts))
	for _, list := range [][]posts.Post{snap.Posts, snap.Filtered} {
		assert.Equal(t, "Abstract Art Revisited", list[2].Title)
	}
	require.NotNil(t, snap.CurrentPost)
	assert.Equal(t, "Abstract Art Revisited", snap.CurrentPost.Title)

	notifications := f.drain()
	require.Len(t, notifications, 1)
	assert.Equal(t, "post updated successfully", notifications[0].Message)
}

func TestDeleteRemovesAndClearsCurrent(t *testing.T) {
	f := newStoreFixture(t)
	f.seedThree()
	f.login(t, "alice@example.com", "password1")
	require.NoError(t, f.store.FetchAll(context.Background()))
	_, err := f.store.FetchOne(context.Background(), "1")
	require.NoError(t, err)
	f.drain()

	require.NoError(t, f.store.Delete(context.Background(), "1"))

	snap := f.store.Snapshot()
	assert.Equal(t, []string{"3", "2"}, postIDs(snap.Posts))
	assert.Equal(t, []string{"3", "2"}, postIDs(snap.Filtered))
	assert.Nil(t, snap.CurrentPost)

	notifications := f.drain()
	require.Len(t, notifications, 1)
	assert.Equal(t, notify.LevelSuccess, notifications[0].Level)
}

func TestFetchOneTracksViewCount(t *testing.T) {
	f := newStoreFixture(t)
	f.seedThree()

	first, err := f.store.FetchOne(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ViewCount)

	second, err := f.store.FetchOne(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.ViewCount)

	current := f.store.Current()
	require.NotNil(t, current)
	assert.Equal(t, "2", current.ID)
}

func TestSortPostsResortsOnlyTheView(t *testing.T) {
	f := newStoreFixture(t)
	f.seedThree()
	require.NoError(t, f.store.FetchAll(context.Background()))

	f.store.SortPosts(posts.SortByTitle, posts.SortAsc)

	snap := f.store.Snapshot()
	assert.Equal(t, []string{"1", "2", "3"}, postIDs(snap.Filtered))
	// Base list keeps its fetch-time order.
	assert.Equal(t, []string{"3", "2", "1"}, postIDs(snap.Posts))
}

func TestMutationWithoutTokenIsUnauthorized(t *testing.T) {
	f := newStoreFixture(t)
	f.seedThree()
	require.NoError(t, f.store.FetchAll(context.Background()))
	f.drain()

	_, err := f.store.Create(context.Background(), posts.PostInput{
		Title:   "No Token",
		Content: "content long enough to pass",
	}, nil)
	require.Error(t, err)

	// The 401 was classified and notified by the gateway once.
	notifications := f.drain()
	require.Len(t, notifications, 1)
	assert.Equal(t, notify.LevelError, notifications[0].Level)

	// Lists stay as fetched.
	assert.Equal(t, []string{"3", "2", "1"}, postIDs(f.store.Posts()))
}
