// Package fetch retrieves the source document a conversation is generated
// from: a web page or a local text, markdown or PDF file.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mitchellh/go-homedir"
	"golang.org/x/net/html/charset"
)

var (
	// ErrFetch wraps every failure to obtain a document.
	ErrFetch = errors.New("failed to fetch content")

	// ErrUnsupportedType is returned for local files other than .txt, .md
	// and .pdf.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrNotFound is returned when a local file does not exist.
	ErrNotFound = errors.New("file not found")
)

// DefaultTimeout bounds a URL fetch.
const DefaultTimeout = 30 * time.Second

// maxBody bounds how much of a web page is read.
const maxBody = 20 << 20

// Document is fetched source content.
type Document struct {
	Title  string
	Text   string
	Source string // the URL, or file://<absolute path>
}

// Fetcher retrieves documents.
type Fetcher struct {
	client    *http.Client
	userAgent string
	logger    *log.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

// New returns a Fetcher.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:    &http.Client{Timeout: DefaultTimeout},
		userAgent: "doc2convo/1.0",
		logger:    log.Default(),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// IsURL reports whether source has a scheme and a host.
func IsURL(source string) bool {
	u, err := url.Parse(source)
	return err == nil && u.Scheme != "" && u.Host != "" && u.Scheme != "file"
}

// Fetch retrieves source, which is a URL, a file:// URL or a local path.
func (f *Fetcher) Fetch(ctx context.Context, source string) (*Document, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("%w: empty source", ErrFetch)
	}
	if IsURL(source) {
		return f.fetchURL(ctx, source)
	}
	path := strings.TrimPrefix(source, "file://")
	return f.readFile(path)
}

func (f *Fetcher) fetchURL(ctx context.Context, rawURL string) (*Document, error) {
	f.logger.Info("Fetching content", "url", rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s: %s", ErrFetch, rawURL, resp.Status)
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, maxBody), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, rawURL, err)
	}
	title, text, err := extractHTML(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, rawURL, err)
	}
	if title == "" {
		if u, err := url.Parse(rawURL); err == nil {
			title = u.Host
		}
	}
	return &Document{Title: title, Text: text, Source: rawURL}, nil
}

func (f *Fetcher) readFile(path string) (*Document, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	if _, err := os.Stat(abs); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %w: %s", ErrFetch, ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	ext := strings.ToLower(filepath.Ext(abs))
	title := strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs))
	f.logger.Info("Reading file", "path", path)

	var text string
	switch ext {
	case ".txt":
		data, err := os.ReadFile(abs)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFetch, err)
		}
		text = string(data)
	case ".md", ".markdown":
		data, err := os.ReadFile(abs)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFetch, err)
		}
		text = PlainText(data)
	case ".pdf":
		text, err = readPDF(abs)
		if err != nil {
			return nil, fmt.Errorf("%w: reading PDF %s: %v", ErrFetch, path, err)
		}
	default:
		return nil, fmt.Errorf("%w: %w: %q", ErrFetch, ErrUnsupportedType, ext)
	}

	return &Document{
		Title:  title,
		Text:   strings.TrimSpace(text),
		Source: "file://" + filepath.ToSlash(abs),
	}, nil
}
