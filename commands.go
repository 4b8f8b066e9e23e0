package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"webgu/browser"
	"webgu/config"
	"webgu/document"
	"webgu/html"
	"webgu/pipeline"
	"webgu/render"
	"webgu/server"
	"webgu/session"
)

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func printCmd() *cobra.Command {
	var plain, reload bool
	var width int

	cmd := &cobra.Command{
		Use:   "print <url>",
		Short: "Render a page to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			var opts []pipeline.NavigateOption
			if reload {
				opts = append(opts, pipeline.WithReload())
			}
			page, err := a.newPipeline(newProgressShell(os.Stderr)).Navigate(ctx, args[0], opts...)
			if err != nil {
				return errors.New(pipeline.UserMessage(args[0], err))
			}
			return writePage(a, page, width, plain)
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "Plain text without colors")
	cmd.Flags().BoolVar(&reload, "reload", false, "Skip the page cache")
	cmd.Flags().IntVarP(&width, "width", "w", 0, "Page width in columns (default: terminal width)")
	return cmd
}

func openCmd() *cobra.Command {
	var back, forward, newTab, reload, plain bool

	cmd := &cobra.Command{
		Use:   "open [url]",
		Short: "Browse with tabs and history kept in the session file",
		Long: `open restores the saved session, navigates the active tab and prints the
result. Without a URL it shows the active tab's current page again.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			path, err := session.Path()
			if err != nil {
				return err
			}
			saved, err := session.Load(path)
			if err != nil {
				return err
			}

			b := browser.New(a.newPipeline,
				browser.WithLogger(a.logger.Named("browser")),
				browser.WithShell(func(string) pipeline.Shell { return newProgressShell(os.Stderr) }),
			)
			b.Restore(saved)
			if newTab {
				b.NewTab()
			}
			tab := b.Active()

			target := tab.URL()
			if len(args) == 1 {
				target = args[0]
			}

			var page *pipeline.Page
			switch {
			case back:
				page, err = tab.Back(ctx)
			case forward:
				page, err = tab.Forward(ctx)
			case len(args) == 1:
				page, err = tab.Navigate(ctx, args[0])
			case reload:
				page, err = tab.Reload(ctx)
			case target != "":
				page, err = tab.Navigate(ctx, target)
			default:
				return errors.New("no URL given and no page open")
			}
			if err != nil {
				if errors.Is(err, browser.ErrNoHistory) {
					return err
				}
				return errors.New(pipeline.UserMessage(target, err))
			}

			if err := session.Save(path, b.Snapshot()); err != nil {
				return fmt.Errorf("saving session: %w", err)
			}
			return writePage(a, page, 0, plain)
		},
	}
	cmd.Flags().BoolVar(&back, "back", false, "Go back in the active tab")
	cmd.Flags().BoolVar(&forward, "forward", false, "Go forward in the active tab")
	cmd.Flags().BoolVar(&newTab, "new-tab", false, "Open in a new tab")
	cmd.Flags().BoolVar(&reload, "reload", false, "Reload the active tab, skipping the cache")
	cmd.Flags().BoolVar(&plain, "plain", false, "Plain text without colors")
	cmd.MarkFlagsMutuallyExclusive("back", "forward", "reload")
	return cmd
}

func writePage(a *app, page *pipeline.Page, width int, plain bool) error {
	if width <= 0 {
		width = a.cfg.Render.Width
	}
	if width <= 0 {
		width = 80
		if w, _, err := render.TerminalSize(os.Stdout); err == nil {
			width = w
		} else {
			plain = true
		}
	}

	canvas := document.NewPainter(width, a.cfg.Theme()).Paint(page.Title, page.Nodes())
	if plain {
		_, err := fmt.Fprint(os.Stdout, canvas.PlainText())
		return err
	}
	return canvas.RenderTo(os.Stdout)
}

func elementsCmd() *cobra.Command {
	var withMeta, summary bool

	cmd := &cobra.Command{
		Use:   "elements <url|file>",
		Short: "Dump the scanned elements as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			markup, err := readMarkup(ctx, a, args[0])
			if err != nil {
				return err
			}
			markup = a.policy.Sanitize(markup)

			out := struct {
				*html.Document
				Meta *html.Meta `json:"meta,omitempty"`
			}{Document: a.scanner.Parse(markup)}
			out.Elements = html.Filter(out.Elements)
			if summary {
				return writeSummary(out.Document)
			}
			if withMeta {
				m, err := html.ReadMeta(markup)
				if err != nil {
					return err
				}
				out.Meta = &m
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().BoolVar(&withMeta, "meta", false, "Include title, base href and description")
	cmd.Flags().BoolVar(&summary, "summary", false, "Print element counts per render category instead of JSON")
	return cmd
}

func writeSummary(doc *html.Document) error {
	counts := make(map[html.Category]int)
	for _, el := range doc.Elements {
		counts[el.Category()]++
	}

	for _, c := range html.Categories() {
		if counts[c] > 0 {
			fmt.Printf("%-18s %d\n", c, counts[c])
		}
	}
	fmt.Printf("%-18s %d\n", "total", doc.Len())
	if doc.Truncated {
		fmt.Println("(scan cap reached)")
	}
	return nil
}

// readMarkup reads a local file, or fetches arg when no such file exists.
func readMarkup(ctx context.Context, a *app, arg string) (string, error) {
	if data, err := os.ReadFile(arg); err == nil {
		return string(data), nil
	}

	u, err := pipeline.NormalizeURL(arg)
	if err != nil {
		return "", err
	}
	if err := a.policy.Allow(u); err != nil {
		return "", err
	}
	res, err := a.fetcher.Fetch(ctx, u.String())
	if err != nil {
		return "", err
	}
	return res.Markup, nil
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the render API, WebSocket shell and metrics over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			srv := server.New(a.newPipeline,
				server.WithGatherer(a.registry),
				server.WithTheme(a.cfg.Theme()),
				server.WithLogger(a.logger.Named("server")),
				server.WithRequestTimeout(a.cfg.Server.RequestTimeout),
			)
			return srv.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	return cmd
}

func initConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config",
		Short: "Print the default configuration (redirect to ~/.config/webgu/config.toml)",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Print(config.DefaultTOML())
		},
	}
}

func sessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect or clear the saved tabs",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "List the saved tabs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := session.Path()
			if err != nil {
				return err
			}
			s, err := session.Load(path)
			if err != nil {
				return err
			}
			if len(s.Tabs) == 0 {
				fmt.Println("no saved tabs")
				return nil
			}
			for i, t := range s.Tabs {
				marker := " "
				if i == s.Active {
					marker = "*"
				}
				fmt.Printf("%s %d  %s  (%d back, %d forward)\n", marker, i+1, t.URL, len(t.Back), len(t.Forward))
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Forget the saved tabs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := session.Path()
			if err != nil {
				return err
			}
			return session.Clear(path)
		},
	})
	return cmd
}
