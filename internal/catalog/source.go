package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/tailscale/hujson"
)

// Source supplies the project collection. Fetch is called once per catalog.
type Source interface {
	Fetch(ctx context.Context) (*Document, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (*Document, error)

func (f SourceFunc) Fetch(ctx context.Context) (*Document, error) { return f(ctx) }

// FileSource reads a projects file from disk. Comments and trailing commas
// are allowed.
type FileSource struct {
	Path string
}

func (s FileSource) Fetch(ctx context.Context) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Path, err)
	}
	return DecodeJSONC(data)
}

// DecodeJSONC standardizes JSONC input before decoding it.
func DecodeJSONC(data []byte) (*Document, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid JSONC: %w", ErrMalformedDocument, err)
	}
	return Decode(standardized)
}

// maxDocumentSize bounds what HTTPSource will read.
const maxDocumentSize = 4 << 20

// HTTPSource fetches the document from a URL, typically a static
// data/projects.json next to the site.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

func (s HTTPSource) Fetch(ctx context.Context) (*Document, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", s.URL, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.URL, err)
	}
	return Decode(data)
}
