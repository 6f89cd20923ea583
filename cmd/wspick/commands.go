package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"wspick/internal/config"
	"wspick/internal/models"
	"wspick/internal/opener"
	"wspick/internal/session"
	"wspick/internal/testserver"
	"wspick/internal/ui"
	"wspick/internal/ui/views"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const fetchTimeout = 30 * time.Minute

func newBrowseCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse [hostname]",
		Short: "Open the interactive browser",
		Args:  cobra.MaximumNArgs(1),
		RunE:  a.runBrowse,
	}
	cmd.Flags().StringVarP(&a.location, "location", "l", "", "Initial remote directory")
	return cmd
}

func (a *app) runBrowse(cmd *cobra.Command, args []string) error {
	cfg := a.config()
	o, err := opener.New(cfg.Download.Mode, cfg.Download.Dir)
	if err != nil {
		return err
	}
	return a.runTUI(a.newSession(), o, a.target(args), len(args) > 0, a.manager)
}

// runTUI runs the browser. A nil manager keeps the session out of the saved
// config.
func (a *app) runTUI(s *session.Session, o opener.Opener, target models.Target, autoConnect bool, manager *config.Manager) error {
	width, height := 100, 30
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width, height = w, h
	}

	view := views.NewBrowserView(views.Options{
		Session:     s,
		Opener:      o,
		Config:      manager,
		Target:      target,
		Width:       width,
		Height:      height,
		AutoConnect: autoConnect,
	})

	p := tea.NewProgram(view, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running browser: %w", err)
	}
	return nil
}

func newLsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls <hostname>",
		Short: "Print a remote directory listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*a.config().RequestTimeout)
			defer cancel()

			r, err := a.open(ctx, a.target(args))
			if err != nil {
				return err
			}
			defer r.Close(context.Background())

			s := r.Session()
			rows := make([][]string, 0, len(s.Entries()))
			for _, e := range s.Entries() {
				if e.IsParent() {
					continue
				}
				name := e.Name
				if e.IsDir() {
					name += "/"
				}
				rows = append(rows, []string{e.Mode.String(), name})
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.TitleStyle.Render(s.Target().Label()))
			fmt.Fprintln(cmd.OutOrStdout(), ui.CreateLipglossTable([]string{"Mode", "Name"}, rows))
			return nil
		},
	}
	cmd.Flags().StringVarP(&a.location, "location", "l", "", "Remote directory to list")
	return cmd
}

func newGetCmd(a *app) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "get <hostname> <name>",
		Short: "Download one entry of a remote directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = a.config().Download.Dir
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*a.config().RequestTimeout)
			defer cancel()

			r, err := a.open(ctx, a.target(args[:1]))
			if err != nil {
				return err
			}
			defer r.Close(context.Background())

			s := r.Session()
			entry, ok := findEntry(s.Entries(), args[1])
			if !ok {
				return fmt.Errorf("%s not found in %s", args[1], s.Location())
			}
			if err := s.Download(entry); err != nil {
				return err
			}

			var link string
			gotLink := func(_ *session.Session, eff session.Effect) bool {
				if eff.OpenURL != "" {
					link = eff.OpenURL
					return true
				}
				return false
			}
			if err := r.Until(ctx, gotLink); err != nil {
				return err
			}

			fetchCtx, cancelFetch := context.WithTimeout(cmd.Context(), fetchTimeout)
			defer cancelFetch()

			desc, err := opener.NewFetcher(dir, os.Stderr).Open(fetchCtx, link)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.SuccessStyle.Render(desc))
			return nil
		},
	}
	cmd.Flags().StringVarP(&a.location, "location", "l", "", "Remote directory holding the entry")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Directory to save into (default from config)")
	return cmd
}

func findEntry(entries []models.RemoteEntry, name string) (models.RemoteEntry, bool) {
	for _, e := range entries {
		if e.Name == name && !e.IsParent() {
			return e, true
		}
	}
	return models.RemoteEntry{}, false
}

func newDemoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Browse a built-in sample tree served in-process",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := testserver.New(testserver.Options{EchoEnteredPath: true})
			defer srv.Close()

			a.config().Endpoint = srv.Endpoint()

			dir, err := os.MkdirTemp("", "wspick-demo-")
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "downloads go to %s\n", dir)

			target := models.Target{Hostname: "demo@localhost", Location: "/"}
			return a.runTUI(a.newSession(), opener.NewFetcher(dir, nil), target, true, nil)
		},
	}
}
