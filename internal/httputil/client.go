// Package httputil provides the shared HTTP configuration, fetch helpers
// and input sanitization used by the site adapter and the stream extractors.
package httputil

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// DefaultUserAgent is sent when the configuration does not name one.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"

// maxBody caps every response body read into memory.
const maxBody = 10 * 1024 * 1024

// ErrFetchFailed marks network, status and decoding failures of a page fetch.
var ErrFetchFailed = errors.New("fetch failed")

// FetchError describes a failed request. It matches ErrFetchFailed with errors.Is.
type FetchError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetchFailed }

// Config is the single HTTP configuration injected into the adapter and extractors.
type Config struct {
	UserAgent string
	Headers   map[string]string // Sent with every request unless overridden per call
	Timeout   time.Duration
}

// Client performs requests with the headers and limits of a Config.
// It is safe for concurrent use.
type Client struct {
	http *http.Client
	cfg  Config
}

// NewClient creates a hardened client from cfg.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				TLSClientConfig: &tls.Config{
					MinVersion: tls.VersionTLS12,
				},
				ForceAttemptHTTP2:   true,
				MaxIdleConns:        20,
				IdleConnTimeout:     30 * time.Second,
				MaxIdleConnsPerHost: 10,
			},
		},
	}
}

// WithHTTPClient returns a copy of c that sends requests through hc.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	return &Client{http: hc, cfg: c.cfg}
}

// UserAgent returns the user agent sent with every request.
func (c *Client) UserAgent() string {
	return c.cfg.UserAgent
}

// Document fetches rawURL and parses it as HTML, decoding the body according
// to the declared charset.
func (c *Client) Document(ctx context.Context, rawURL string, headers map[string]string) (*goquery.Document, error) {
	resp, err := c.do(ctx, http.MethodGet, rawURL, nil, headers)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	r, err := charset.NewReader(io.LimitReader(resp.Body, maxBody), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("decoding body: %w", err)}
	}
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("parsing HTML: %w", err)}
	}
	// Relative links resolve against the final URL after redirects.
	doc.Url = resp.Request.URL
	return doc, nil
}

// Text fetches rawURL and returns the decoded body.
func (c *Client) Text(ctx context.Context, rawURL string, headers map[string]string) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, rawURL, nil, headers)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	return readText(rawURL, resp)
}

// PostForm posts form as application/x-www-form-urlencoded and returns the raw body.
func (c *Client) PostForm(ctx context.Context, rawURL string, headers map[string]string, form url.Values) (string, error) {
	h := map[string]string{
		"Content-Type":     "application/x-www-form-urlencoded; charset=UTF-8",
		"X-Requested-With": "XMLHttpRequest",
	}
	for k, v := range headers {
		h[k] = v
	}
	resp, err := c.do(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()), h)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	return readText(rawURL, resp)
}

// JSON fetches rawURL and decodes the body into v.
func (c *Client) JSON(ctx context.Context, rawURL string, headers map[string]string, v any) error {
	h := map[string]string{"Accept": "application/json"}
	for k, val := range headers {
		h[k] = val
	}
	resp, err := c.do(ctx, http.MethodGet, rawURL, nil, h)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(v); err != nil {
		return &FetchError{URL: rawURL, Err: fmt.Errorf("parsing JSON: %w", err)}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, rawURL string, body io.Reader, headers map[string]string) (*http.Response, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("invalid URL: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("creating request: %w", err)}
	}

	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ar,en-US;q=0.7,en;q=0.3")
	for k, v := range c.cfg.Headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode}
	}
	return resp, nil
}

func readText(rawURL string, resp *http.Response) (string, error) {
	r, err := charset.NewReader(io.LimitReader(resp.Body, maxBody), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: fmt.Errorf("decoding body: %w", err)}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: fmt.Errorf("reading response: %w", err)}
	}
	return string(data), nil
}
