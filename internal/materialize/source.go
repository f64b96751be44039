package materialize

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// SourceUnavailableError reports a template source that could not be
// resolved. The apply engine treats it as a step failure and rolls back.
type SourceUnavailableError struct {
	Locator string
	Reason  string
}

func (e SourceUnavailableError) Error() string {
	return fmt.Sprintf("source %q unavailable: %s", e.Locator, e.Reason)
}

// Resolver turns a source_from locator into file content.
type Resolver interface {
	Resolve(ctx context.Context, locator string) ([]byte, error)
}

// SourceResolver resolves http(s) URLs over the network and anything else as
// a path under the provider's template directory.
type SourceResolver struct {
	// TemplateDir is the provider's directory under the amaris configs dir.
	TemplateDir string
	// Client defaults to http.DefaultClient when nil.
	Client *http.Client
}

func (r SourceResolver) Resolve(ctx context.Context, locator string) ([]byte, error) {
	if strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://") {
		return r.fetchURL(ctx, locator)
	}
	return r.readLocal(locator)
}

func (r SourceResolver) readLocal(locator string) ([]byte, error) {
	path := locator
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.TemplateDir, filepath.FromSlash(locator))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, SourceUnavailableError{Locator: locator, Reason: err.Error()}
	}
	return data, nil
}

func (r SourceResolver) fetchURL(ctx context.Context, locator string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, SourceUnavailableError{Locator: locator, Reason: err.Error()}
	}

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, SourceUnavailableError{Locator: locator, Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, SourceUnavailableError{Locator: locator, Reason: fmt.Sprintf("unexpected status %s", resp.Status)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, SourceUnavailableError{Locator: locator, Reason: err.Error()}
	}
	return data, nil
}
