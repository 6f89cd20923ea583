// internal/opener/opener.go

// Package opener acts on download links handed out by the server.
package opener

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	apperrors "wspick/internal/error"
	"wspick/internal/log"
)

const (
	ModeBrowser = "browser"
	ModeSave    = "save"
)

// Opener delivers a download link and describes what it did.
type Opener interface {
	Open(ctx context.Context, url string) (string, error)
}

// Browser hands links to the platform's default URL handler.
type Browser struct {
	goos  string
	start func(ctx context.Context, name string, args ...string) error
}

func NewBrowser() *Browser {
	return &Browser{goos: runtime.GOOS, start: startDetached}
}

func startDetached(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	// The handler may outlive us; reap it in the background.
	go func() { _ = cmd.Wait() }()
	return nil
}

// browserCommand returns the launcher for goos.
func browserCommand(goos, url string) (string, []string) {
	switch goos {
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	case "darwin":
		return "open", []string{url}
	default:
		return "xdg-open", []string{url}
	}
}

func (b *Browser) Open(ctx context.Context, url string) (string, error) {
	name, args := browserCommand(b.goos, url)
	log.Debugf("launching %s for %s", name, url)
	if err := b.start(ctx, name, args...); err != nil {
		return "", apperrors.New(apperrors.FileError, fmt.Sprintf("failed to launch %s", name), err)
	}
	return "opened " + url, nil
}

// New picks an opener for a configured download mode.
func New(mode, dir string) (Opener, error) {
	switch mode {
	case "", ModeBrowser:
		return NewBrowser(), nil
	case ModeSave:
		return NewFetcher(dir, nil), nil
	default:
		return nil, apperrors.Newf(apperrors.ConfigError, "unknown download mode %q", mode)
	}
}
