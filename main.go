// Command blogctl is the demo entry point for the blog client core. It wires
// the configuration, durable storage, notifier, gateway, services and stores
// together exactly the way an embedding application would, and exposes the
// store actions as subcommands. It is the application root the design talks
// about: the place that subscribes to notifications and to the session-expiry
// signal instead of the gateway reaching into presentation concerns itself.
package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/user/blogclient-go/auth"
	"github.com/user/blogclient-go/config"
	"github.com/user/blogclient-go/gateway"
	"github.com/user/blogclient-go/mockapi"
	"github.com/user/blogclient-go/notify"
	"github.com/user/blogclient-go/posts"
	"github.com/user/blogclient-go/storage"
)

// app bundles the wired core for the CLI actions.
type app struct {
	cfg       *config.AppConfig
	logger    zerolog.Logger
	notifier  *notify.Notifier
	notifSub  string
	notifCh   <-chan notify.Notification
	authStore *auth.Store
	postStore *posts.Store
}

// newApp builds the full dependency graph. Everything is constructed here
// and passed down explicitly; no package-level state anywhere in the core.
func newApp(verbose bool) (*app, error) {
	// .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	store := storage.NewFileStore(cfg.Storage.Path)
	notifier := notify.NewNotifier()

	gw := gateway.NewClient(cfg.Client, store, notifier, logger)

	authService := auth.NewService(gw, store, logger)
	authStore := auth.NewStore(authService, notifier, logger)

	postService := posts.NewService(gw, logger)
	postStore := posts.NewStore(postService, notifier, logger)

	// Restore a persisted session, if a structurally valid one exists.
	authStore.Initialize()

	// The application root owns the reaction to session expiry: drop the
	// in-memory session. The gateway has already cleared storage.
	expiryID, expiryCh := notifier.SubscribeSessionExpired()
	go func() {
		for range expiryCh {
			authStore.Invalidate()
		}
	}()
	_ = expiryID

	notifSub, notifCh := notifier.Subscribe()

	return &app{
		cfg:       cfg,
		logger:    logger,
		notifier:  notifier,
		notifSub:  notifSub,
		notifCh:   notifCh,
		authStore: authStore,
		postStore: postStore,
	}, nil
}

// flush prints any pending notifications. Called after each action so the
// user sees what the core published.
func (a *app) flush() {
	for {
		select {
		case n, ok := <-a.notifCh:
			if !ok {
				return
			}
			fmt.Printf("[%s] %s\n", n.Level, n.Message)
		default:
			return
		}
	}
}

func printPost(post posts.Post) {
	fmt.Printf("%s  %s - by %s (%s)\n", post.ID, post.Title, post.AuthorName, post.CreatedAt.Format("2006-01-02"))
}

func main() {
	var a *app

	cliApp := &cli.App{
		Name:  "blogctl",
		Usage: "command-line client for the blog platform API",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "enable debug logging"},
		},
		Before: func(c *cli.Context) error {
			built, err := newApp(c.Bool("verbose"))
			if err != nil {
				return err
			}
			a = built
			return nil
		},
		After: func(c *cli.Context) error {
			if a != nil {
				a.flush()
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "sign in and persist the session",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true},
				},
				Action: func(c *cli.Context) error {
					return a.authStore.Login(c.Context, auth.LoginRequest{
						Email:    c.String("email"),
						Password: c.String("password"),
					})
				},
			},
			{
				Name:  "register",
				Usage: "create an account (does not sign in)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true},
					&cli.StringFlag{Name: "role", Value: string(auth.RoleAuthor), Usage: "ADMIN or AUTHOR"},
				},
				Action: func(c *cli.Context) error {
					return a.authStore.Register(c.Context, auth.RegisterRequest{
						Name:     c.String("name"),
						Email:    c.String("email"),
						Password: c.String("password"),
						Role:     auth.Role(strings.ToUpper(c.String("role"))),
					})
				},
			},
			{
				Name:  "logout",
				Usage: "clear the persisted session",
				Action: func(c *cli.Context) error {
					a.authStore.Logout()
					return nil
				},
			},
			{
				Name:  "whoami",
				Usage: "show the current session",
				Action: func(c *cli.Context) error {
					snap := a.authStore.Snapshot()
					if !snap.IsAuthenticated {
						fmt.Println("not signed in")
						return nil
					}
					fmt.Printf("%s <%s> role=%s\n", snap.User.Name, snap.User.Email, snap.User.Role)
					return nil
				},
			},
			{
				Name:  "posts",
				Usage: "work with posts",
				Subcommands: []*cli.Command{
					{
						Name:  "list",
						Usage: "list posts, optionally searched and sorted",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "author", Usage: "only posts by this author id (email)"},
							&cli.StringFlag{Name: "search", Usage: "client-side search query"},
							&cli.StringFlag{Name: "sort", Value: string(posts.SortByCreatedAt)},
							&cli.StringFlag{Name: "order", Value: string(posts.SortDesc)},
						},
						Action: func(c *cli.Context) error {
							a.postStore.SortPosts(posts.SortField(c.String("sort")), posts.SortOrder(c.String("order")))
							var err error
							if author := c.String("author"); author != "" {
								err = a.postStore.FetchByAuthor(c.Context, author)
							} else {
								err = a.postStore.FetchAll(c.Context)
							}
							if err != nil {
								return err
							}
							if query := c.String("search"); query != "" {
								a.postStore.SetSearch(query)
							}
							for _, post := range a.postStore.Filtered() {
								printPost(post)
							}
							return nil
						},
					},
					{
						Name:      "show",
						Usage:     "show one post",
						ArgsUsage: "<id>",
						Action: func(c *cli.Context) error {
							post, err := a.postStore.FetchOne(c.Context, c.Args().First())
							if err != nil {
								return err
							}
							printPost(*post)
							fmt.Println()
							fmt.Println(post.Content)
							if post.ImageURL != "" {
								fmt.Printf("\nimage: %s%s\n", a.cfg.Client.ImageBaseURL, post.ImageURL)
							}
							return nil
						},
					},
					{
						Name:  "create",
						Usage: "create a post",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "title", Required: true},
							&cli.StringFlag{Name: "content", Required: true},
							&cli.StringFlag{Name: "image", Usage: "path to an image file"},
						},
						Action: func(c *cli.Context) error {
							image, err := loadImage(c.String("image"))
							if err != nil {
								return err
							}
							created, err := a.postStore.Create(c.Context, posts.PostInput{
								Title:   c.String("title"),
								Content: c.String("content"),
							}, image)
							if err != nil {
								return err
							}
							printPost(*created)
							return nil
						},
					},
					{
						Name:      "update",
						Usage:     "update a post",
						ArgsUsage: "<id>",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "title", Required: true},
							&cli.StringFlag{Name: "content", Required: true},
							&cli.StringFlag{Name: "image", Usage: "path to an image file"},
						},
						Action: func(c *cli.Context) error {
							image, err := loadImage(c.String("image"))
							if err != nil {
								return err
							}
							updated, err := a.postStore.Update(c.Context, c.Args().First(), posts.PostInput{
								Title:   c.String("title"),
								Content: c.String("content"),
							}, image)
							if err != nil {
								return err
							}
							printPost(*updated)
							return nil
						},
					},
					{
						Name:      "delete",
						Usage:     "delete a post",
						ArgsUsage: "<id>",
						Action: func(c *cli.Context) error {
							return a.postStore.Delete(c.Context, c.Args().First())
						},
					},
				},
			},
			{
				Name:  "mock-server",
				Usage: "run the bundled in-memory blog API for local development",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "port", Usage: "listen port (defaults to BLOG_MOCK_PORT)"},
				},
				Action: func(c *cli.Context) error {
					port := c.String("port")
					if port == "" {
						port = a.cfg.Mock.Port
					}

					server := mockapi.New(mockapi.Options{
						JWTSecret:     a.cfg.Mock.JWTSecret,
						TokenDuration: a.cfg.Mock.TokenDuration,
					})
					// A couple of fixtures so the client has something to talk to.
					if err := server.SeedUser("Admin", "admin@example.com", "admin123", "ADMIN"); err != nil {
						return err
					}
					if err := server.SeedUser("Author", "author@example.com", "author123", "AUTHOR"); err != nil {
						return err
					}

					srv := &http.Server{
						Addr:         ":" + port,
						Handler:      server.Handler(),
						ReadTimeout:  15 * time.Second,
						WriteTimeout: 15 * time.Second,
					}

					errCh := make(chan error, 1)
					go func() {
						a.logger.Info().Str("addr", srv.Addr).Msg("mock API listening")
						fmt.Printf("mock blog API listening on :%s (api at /api)\n", port)
						if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
							errCh <- err
						}
					}()

					stop := make(chan os.Signal, 1)
					signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

					select {
					case err := <-errCh:
						return err
					case <-stop:
						return srv.Close()
					}
				},
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		// Store actions already published user-facing notifications; this is
		// the fallback for wiring/flag errors.
		fmt.Fprintln(os.Stderr, "error:", err)
		if a != nil {
			a.flush()
		}
		os.Exit(1)
	}
}

// loadImage reads an optional image path into an ImageFile. An empty path
// yields nil, meaning no attachment.
func loadImage(path string) (*posts.ImageFile, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", path, err)
	}
	return &posts.ImageFile{
		Name: strings.TrimSpace(strings.ToLower(path[strings.LastIndex(path, "/")+1:])),
		Data: data,
	}, nil
}
