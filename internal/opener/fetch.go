// internal/opener/fetch.go

package opener

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	apperrors "wspick/internal/error"
	"wspick/internal/log"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
)

const fallbackName = "download"

// retryLogger routes retryablehttp's leveled logging into the app log.
type retryLogger struct {
	entry *logrus.Entry
}

func (l retryLogger) fields(keysAndValues []interface{}) *logrus.Entry {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return l.entry.WithFields(fields)
}

func (l retryLogger) Error(msg string, kv ...interface{}) { l.fields(kv).Error(msg) }
func (l retryLogger) Warn(msg string, kv ...interface{})  { l.fields(kv).Warn(msg) }
func (l retryLogger) Info(msg string, kv ...interface{})  { l.fields(kv).Debug(msg) }
func (l retryLogger) Debug(msg string, kv ...interface{}) { l.fields(kv).Debug(msg) }

// Fetcher saves download links into a directory instead of opening them.
type Fetcher struct {
	Dir string

	// Progress receives a progress bar when set.
	Progress io.Writer

	client *retryablehttp.Client
}

func NewFetcher(dir string, progress io.Writer) *Fetcher {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.Logger = retryLogger{entry: log.WithFields(logrus.Fields{"component": "fetch"})}

	return &Fetcher{Dir: dir, Progress: progress, client: client}
}

func (f *Fetcher) Open(ctx context.Context, rawURL string) (string, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", apperrors.New(apperrors.ValidationError, "invalid download url", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", apperrors.New(apperrors.TransportError, "download failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apperrors.Newf(apperrors.TransportError, "download failed: %s", resp.Status)
	}

	dir := f.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", apperrors.New(apperrors.FileError, "failed to create download directory", err)
	}

	target := uniquePath(filepath.Join(dir, fileName(resp.Header.Get("Content-Disposition"), rawURL)))
	tmp, err := os.CreateTemp(dir, ".wspick-*")
	if err != nil {
		return "", apperrors.New(apperrors.FileError, "failed to create file", err)
	}
	defer os.Remove(tmp.Name())

	var dst io.Writer = tmp
	if f.Progress != nil {
		bar := progressbar.NewOptions64(resp.ContentLength,
			progressbar.OptionSetDescription(filepath.Base(target)),
			progressbar.OptionSetWriter(f.Progress),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprint(f.Progress, "\n")
			}),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionSetRenderBlankState(true),
		)
		defer bar.Finish()
		dst = io.MultiWriter(tmp, bar)
	}

	n, err := io.Copy(dst, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", apperrors.New(apperrors.FileError, "failed to write download", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", apperrors.New(apperrors.FileError, "failed to store download", err)
	}

	log.WithFields(logrus.Fields{"path": target, "bytes": n}).Info("download saved")
	return "saved " + target, nil
}

// fileName prefers the server's Content-Disposition filename and falls back
// to the last segment of the URL path. Only a base name is ever returned.
func fileName(disposition, rawURL string) string {
	if disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			if name := safeBase(params["filename"]); name != "" {
				return name
			}
		}
	}
	if u, err := url.Parse(rawURL); err == nil {
		if name := safeBase(path.Base(u.Path)); name != "" {
			return name
		}
	}
	return fallbackName
}

func safeBase(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	switch name {
	case "", ".", "..", "/":
		return ""
	}
	return name
}

// uniquePath appends a counter before the extension until p is unused.
func uniquePath(p string) string {
	if _, err := os.Stat(p); os.IsNotExist(err) {
		return p
	}
	ext := filepath.Ext(p)
	stem := strings.TrimSuffix(p, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s-%d%s", stem, i, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}
