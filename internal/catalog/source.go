package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// maxDocumentSize caps how much of a remote document is read.
const maxDocumentSize = 4 << 20

// Source loads a catalog. Implementations are called once per page session.
type Source interface {
	Load(ctx context.Context) (*Catalog, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (*Catalog, error)

// Load calls f.
func (f SourceFunc) Load(ctx context.Context) (*Catalog, error) {
	return f(ctx)
}

// FileSource reads a JSON or YAML catalog document from disk.
type FileSource struct {
	Path string
}

// Load reads and decodes the file.
func (s FileSource) Load(_ context.Context) (*Catalog, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return Decode(data, FormatFromPath(s.Path))
}

// HTTPSource fetches the catalog document from a remote endpoint.
type HTTPSource struct {
	URL     string
	Client  *http.Client
	Timeout time.Duration
}

// Load fetches and decodes the document.
func (s HTTPSource) Load(ctx context.Context) (*Catalog, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %s", ErrUnavailable, s.URL, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(data) > maxDocumentSize {
		return nil, fmt.Errorf("%w: %s: document too large (over %d bytes)", ErrUnavailable, s.URL, maxDocumentSize)
	}
	return Decode(data, FormatJSON)
}
