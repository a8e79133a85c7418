package report

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	maxLogoSize  = 5 << 20 // 5MB
	fetchTimeout = 10 * time.Second
)

// LogoCache keeps the company logo in a local file and downloads it once
// when the file is missing. Download failures are never returned to the
// caller, the report just goes without a logo.
type LogoCache struct {
	Path       string
	URLs       []string
	Client     *http.Client
	RetryAfter time.Duration

	mu         sync.Mutex
	lastFailed time.Time
}

func NewLogoCache(path string, urls []string) *LogoCache {
	return &LogoCache{
		Path:       path,
		URLs:       urls,
		Client:     &http.Client{Timeout: fetchTimeout},
		RetryAfter: 5 * time.Minute,
	}
}

// Ensure returns the path of the logo file, or "" if there is none.
// The download outlives a cancelled ctx: the cache is shared by all
// requests and one client going away must not block the logo for others.
func (c *LogoCache) Ensure(ctx context.Context) string {
	if c == nil || c.Path == "" {
		return ""
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := os.Stat(c.Path); err == nil {
		return c.Path
	}
	if len(c.URLs) == 0 {
		return ""
	}
	if !c.lastFailed.IsZero() && time.Since(c.lastFailed) < c.RetryAfter {
		return ""
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout*time.Duration(len(c.URLs)))
	defer cancel()
	for _, url := range c.URLs {
		b, err := c.fetch(ctx, url)
		if err != nil {
			logrus.WithError(err).WithField("url", url).Warn("logo download failed")
			continue
		}
		if err := writeFileAtomic(c.Path, b); err != nil {
			logrus.WithError(err).WithField("path", c.Path).Warn("logo not saved")
			break
		}
		logrus.WithField("path", c.Path).Info("logo downloaded")
		return c.Path
	}
	c.lastFailed = time.Now()
	return ""
}

func (c *LogoCache) fetch(ctx context.Context, url string) ([]byte, error) {
	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(strings.ToLower(ct), "image") {
		return nil, fmt.Errorf("content type %q is not an image", ct)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxLogoSize+1))
	if err != nil {
		return nil, err
	}
	if len(b) > maxLogoSize {
		return nil, fmt.Errorf("logo larger than %d bytes", maxLogoSize)
	}
	return b, nil
}

func writeFileAtomic(path string, b []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".logo-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
