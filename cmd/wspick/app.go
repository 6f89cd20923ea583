package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"wspick/internal/config"
	"wspick/internal/log"
	"wspick/internal/models"
	"wspick/internal/session"
	"wspick/internal/transport"
	"wspick/internal/ui"

	"github.com/spf13/cobra"
)

// app carries flag values and the loaded config between cobra hooks.
type app struct {
	cfgFile  string
	endpoint string
	debug    bool
	logFile  string
	location string

	manager   *config.Manager
	logCloser io.Closer
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	a.manager = config.NewManager(a.cfgFile)
	if err := a.manager.Load(); err != nil {
		return err
	}

	cfg := a.manager.Config()
	if a.endpoint != "" {
		cfg.Endpoint = a.endpoint
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if a.logFile != "" {
		cfg.LogFile = a.logFile
	}

	log.SetDebug(a.debug)
	if cfg.LogFile != "" {
		closer, err := log.OpenFile(cfg.LogFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Could not open log file: %v\n", err)
		} else {
			a.logCloser = closer
		}
	}

	if !ui.SetTheme(cfg.Theme) {
		log.Warnf("unknown theme %q, using default", cfg.Theme)
	}

	log.Infof("starting %s with endpoint %s", cmd.Name(), cfg.Endpoint)
	return nil
}

func (a *app) teardown(cmd *cobra.Command, args []string) error {
	if a.logCloser != nil {
		return a.logCloser.Close()
	}
	return nil
}

func (a *app) config() *config.Config {
	return a.manager.Config()
}

func (a *app) newSession() *session.Session {
	cfg := a.config()
	return session.New(session.Options{
		Endpoint: cfg.Endpoint,
		Factory: transport.WebSocketFactory(transport.Options{
			HandshakeTimeout: cfg.HandshakeTimeout,
		}),
		RequestTimeout:    cfg.RequestTimeout,
		CloseOnDisconnect: cfg.CloseOnDisconnect,
	})
}

// target merges a hostname argument and the location flag over the config
// prefill.
func (a *app) target(args []string) models.Target {
	t := a.config().Target()
	if len(args) > 0 {
		t.Hostname = args[0]
	}
	if a.location != "" {
		t.Location = a.location
	}
	return t
}

// open connects and waits for the first listing.
func (a *app) open(ctx context.Context, target models.Target) (*session.Runner, error) {
	s := a.newSession()
	if err := s.Connect(target); err != nil {
		return nil, err
	}

	r := session.NewRunner(s)
	settled := func(s *session.Session, _ session.Effect) bool {
		return s.State() == session.Browsing || s.Idle() || s.State() == session.Disconnected
	}
	if err := r.Until(ctx, settled); err != nil {
		_ = r.Close(ctx)
		return nil, err
	}
	if s.State() != session.Browsing {
		status := s.Status()
		_ = r.Close(ctx)
		return nil, fmt.Errorf("connect to %s: %s", target.Label(), status)
	}
	return r, nil
}
