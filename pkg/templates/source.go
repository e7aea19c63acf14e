// Package templates provides sources that components load template markup
// from at runtime.
//
// A fetch is not cancelled when a newer one supersedes it: whichever fetch
// resolves last assigns the template. Triggering a re-render after assignment
// is the caller's responsibility.
package templates

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	ierrors "github.com/iqwerty/iq/internal/errors"
)

// Source fetches template markup by name.
type Source interface {
	Fetch(ctx context.Context, name string) (string, error)
}

// Dir serves templates from a filesystem directory. Names resolve relative
// to the root; escaping the root is rejected.
type Dir struct {
	Root string
}

// NewDir creates a filesystem source rooted at dir.
func NewDir(dir string) *Dir {
	return &Dir{Root: dir}
}

// Fetch implements Source.
func (d *Dir) Fetch(_ context.Context, name string) (string, error) {
	path := filepath.Join(d.Root, filepath.FromSlash(name))
	rel, err := filepath.Rel(d.Root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", ierrors.Newf("E202", "template name %q escapes root", name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", ierrors.Wrap("E202", err)
	}
	return string(data), nil
}

// HTTP fetches templates from a base URL with a plain GET.
type HTTP struct {
	Base   string
	Client *http.Client
}

// NewHTTP creates an HTTP source. A nil client uses http.DefaultClient.
func NewHTTP(base string, client *http.Client) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{Base: strings.TrimRight(base, "/"), Client: client}
}

// Fetch implements Source.
func (h *HTTP) Fetch(ctx context.Context, name string) (string, error) {
	url := h.Base + "/" + strings.TrimLeft(name, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", ierrors.Wrap("E202", err)
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		return "", ierrors.Wrap("E202", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", ierrors.Newf("E202", "GET %s: %s", url, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", ierrors.Wrap("E202", err)
	}
	return string(body), nil
}

// Multi tries sources in order and returns the first success.
type Multi []Source

// Fetch implements Source.
func (m Multi) Fetch(ctx context.Context, name string) (string, error) {
	var lastErr error
	for _, src := range m {
		markup, err := src.Fetch(ctx, name)
		if err == nil {
			return markup, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no sources configured")
	}
	return "", lastErr
}
