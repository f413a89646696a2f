package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/dtaibeau/youtube-proj/internal/pipeline"
)

const maxDocumentBytes = 64 << 20

// document is the on-disk / over-the-wire transcript export format.
type document struct {
	Title               string              `json:"title"`
	Description         string              `json:"description"`
	TranscriptsDisabled bool                `json:"transcripts_disabled"`
	Transcript          []pipeline.Fragment `json:"transcript"`
}

// Document reads an exported transcript document from a local path, a
// file:// URL or an http(s):// URL.
type Document struct {
	client *http.Client
}

// NewDocument returns a Document source whose HTTP requests time out after
// timeout (no limit when zero).
func NewDocument(timeout time.Duration) *Document {
	return &Document{client: &http.Client{Timeout: timeout}}
}

// Fetch loads and decodes the document at rawURL.
func (d *Document) Fetch(ctx context.Context, rawURL string) (*pipeline.Video, error) {
	body, err := d.open(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var doc document
	if err := json.NewDecoder(io.LimitReader(body, maxDocumentBytes)).Decode(&doc); err != nil {
		return nil, &FetchError{Kind: Unknown, URL: rawURL, Err: fmt.Errorf("decode document: %w", err)}
	}
	if doc.TranscriptsDisabled {
		return nil, &FetchError{Kind: TranscriptsDisabled, URL: rawURL}
	}

	desc := strings.TrimSpace(doc.Description)
	if desc == "" || desc == "None" {
		desc = NoDescription
	}
	return &pipeline.Video{
		URL:         rawURL,
		Title:       doc.Title,
		Description: desc,
		Fragments:   doc.Transcript,
	}, nil
}

func (d *Document) open(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// Plain path (or a Windows drive letter).
		return openFile(rawURL, rawURL)
	}

	switch u.Scheme {
	case "file":
		return openFile(rawURL, u.Path)
	case "http", "https":
		return d.get(ctx, rawURL)
	default:
		return nil, &FetchError{Kind: Unknown, URL: rawURL, Err: fmt.Errorf("unsupported scheme %q", u.Scheme)}
	}
}

func openFile(rawURL, path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &FetchError{Kind: NotFound, URL: rawURL, Err: err}
		}
		return nil, &FetchError{Kind: Unknown, URL: rawURL, Err: err}
	}
	return f, nil
}

func (d *Document) get(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{Kind: Unknown, URL: rawURL, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header = requestHeaders()

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: Unknown, URL: rawURL, Err: fmt.Errorf("HTTP request failed: %w", err)}
	}

	if resp.StatusCode == http.StatusOK {
		return resp.Body, nil
	}
	defer resp.Body.Close()
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	fe := &FetchError{URL: rawURL, Err: fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))}
	switch resp.StatusCode {
	case http.StatusNotFound, http.StatusGone:
		fe.Kind = NotFound
	case http.StatusForbidden:
		fe.Kind = TranscriptsDisabled
	default:
		fe.Kind = Unknown
	}
	return nil, fe
}
