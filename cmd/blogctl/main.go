package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/client"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "blogctl",
		Usage: "talk to a strive-blog server from the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Value:   "http://localhost:3000",
				EnvVars: []string{"BLOG_SERVER"},
				Usage:   "base URL of the API",
			},
			&cli.StringFlag{
				Name:    "session",
				Value:   defaultSessionPath(),
				EnvVars: []string{"BLOG_SESSION"},
				Usage:   "file the session token is kept in",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "sign in with email and password",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", EnvVars: []string{"BLOG_PASSWORD"}, Required: true},
				},
				Action: func(c *cli.Context) error {
					api, err := newClient(c)
					if err != nil {
						return err
					}
					if err := api.Login(c.Context, c.String("email"), c.String("password")); err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, "logged in")
					return nil
				},
			},
			{
				Name:  "logout",
				Usage: "forget the stored session",
				Action: func(c *cli.Context) error {
					api, err := newClient(c)
					if err != nil {
						return err
					}
					return api.Logout()
				},
			},
			{
				Name:  "whoami",
				Usage: "show the signed-in author",
				Action: func(c *cli.Context) error {
					api, err := newClient(c)
					if err != nil {
						return err
					}
					if api.Session().Token() == "" {
						return cli.Exit("not logged in", 1)
					}
					author, err := api.Me(c.Context)
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "%s %s <%s>\n", author.FirstName, author.LastName, author.Email)
					return nil
				},
			},
			{
				Name:  "posts",
				Usage: "browse posts",
				Subcommands: []*cli.Command{
					{
						Name:  "list",
						Usage: "list posts, newest first",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "title", Usage: "filter by title fragment"},
							&cli.IntFlag{Name: "page", Value: 1},
							&cli.IntFlag{Name: "limit", Value: 10},
						},
						Action: func(c *cli.Context) error {
							api, err := newClient(c)
							if err != nil {
								return err
							}
							resp, err := api.ListPosts(c.Context, c.String("title"), c.Int("page"), c.Int("limit"))
							if err != nil {
								return err
							}
							for _, p := range resp.Posts {
								fmt.Fprintf(c.App.Writer, "%s  %-40s  %s\n", p.ID, p.Title, p.Author)
							}
							fmt.Fprintf(c.App.Writer, "page %d of %d (%d posts)\n", resp.Page, resp.TotalPages, resp.Total)
							return nil
						},
					},
					{
						Name:      "show",
						Usage:     "show a post with its comments",
						ArgsUsage: "<post-id>",
						Action: func(c *cli.Context) error {
							id, err := argID(c, 0)
							if err != nil {
								return err
							}
							api, err := newClient(c)
							if err != nil {
								return err
							}
							post, err := api.GetPost(c.Context, id)
							if err != nil {
								return err
							}
							w := c.App.Writer
							fmt.Fprintf(w, "%s\n%s · %s · %d %s\n\n%s\n", post.Title, post.Category, post.Author,
								post.ReadTime.Value, post.ReadTime.Unit, post.Content)
							if len(post.Comments) > 0 {
								fmt.Fprintf(w, "\n%d comments\n", len(post.Comments))
							}
							for _, cm := range post.Comments {
								fmt.Fprintf(w, "- %s: %s\n", cm.Name, cm.Content)
							}
							return nil
						},
					},
				},
			},
			{
				Name:  "comment",
				Usage: "work with comments",
				Subcommands: []*cli.Command{
					{
						Name:      "add",
						Usage:     "comment on a post",
						ArgsUsage: "<post-id> <text>",
						Action: func(c *cli.Context) error {
							id, err := argID(c, 0)
							if err != nil {
								return err
							}
							text := strings.TrimSpace(strings.Join(c.Args().Tail(), " "))
							if text == "" {
								return cli.Exit("comment text is required", 2)
							}
							api, err := newClient(c)
							if err != nil {
								return err
							}
							comment, err := api.AddComment(c.Context, id, text)
							if err != nil {
								if client.IsUnauthorized(err) {
									return cli.Exit("not logged in", 1)
								}
								return err
							}
							fmt.Fprintln(c.App.Writer, comment.ID)
							return nil
						},
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "blogctl:", err)
		os.Exit(1)
	}
}

func newClient(c *cli.Context) (*client.Client, error) {
	session, err := client.OpenSession(c.String("session"))
	if err != nil {
		return nil, err
	}
	return client.New(c.String("server"), session, nil), nil
}

func argID(c *cli.Context, i int) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Args().Get(i))
	if err != nil {
		return uuid.Nil, cli.Exit("a valid post id is required", 2)
	}
	return id, nil
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".blogctl-session.json"
	}
	return filepath.Join(dir, "strive-blog", "session.json")
}
