// Package openlibrary resolves ISBNs against the public Open Library API.
package openlibrary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"dzkitab/internal/platform/apiclient"
)

const DefaultBaseURL = "https://openlibrary.org"

var errRetryable = errors.New("openlibrary: retryable status")

// Client is throttled to a fixed request rate and retries 429 and 5xx
// answers with exponential backoff.
type Client struct {
	httpClient *http.Client
	userAgent  string
	baseURL    string
	limiter    *rate.Limiter
	maxRetries int
	backoff    time.Duration
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithBackoff sets the first retry delay. Later retries double it.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

func NewClient(userAgent string, rps int, maxRetries int, opts ...Option) *Client {
	if rps <= 0 {
		rps = 1
	}
	c := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		userAgent:  userAgent,
		baseURL:    DefaultBaseURL,
		limiter:    rate.NewLimiter(rate.Every(time.Second/time.Duration(rps)), 1),
		maxRetries: maxRetries,
		backoff:    time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type publisher struct {
	Name string `json:"name"`
}

type named struct {
	Name string `json:"name"`
}

// record matches one entry of api/books?jscmd=data.
type record struct {
	Title       string      `json:"title"`
	Subtitle    string      `json:"subtitle"`
	Publishers  []publisher `json:"publishers"`
	PublishDate string      `json:"publish_date"`
	Cover       struct {
		Large  string `json:"large"`
		Medium string `json:"medium"`
	} `json:"cover"`
	Authors       []named `json:"authors"`
	Subjects      []named `json:"subjects"`
	NumberOfPages int     `json:"number_of_pages"`
}

func (r record) bookInfo(isbn string) *apiclient.BookInfo {
	info := &apiclient.BookInfo{
		ISBN:          isbn,
		Title:         r.Title,
		Subtitle:      r.Subtitle,
		PublishedDate: r.PublishDate,
		PageCount:     r.NumberOfPages,
		CoverImageURL: r.Cover.Large,
	}
	if info.CoverImageURL == "" {
		info.CoverImageURL = r.Cover.Medium
	}
	if len(r.Publishers) > 0 {
		info.Publisher = r.Publishers[0].Name
	}
	for _, a := range r.Authors {
		info.Authors = append(info.Authors, a.Name)
	}
	for i, s := range r.Subjects {
		if i == 3 {
			break
		}
		info.Categories = append(info.Categories, s.Name)
	}
	return info
}

// LookupISBN answers in the same shape as the dz-kitab backend so callers
// can use either source.
func (c *Client) LookupISBN(ctx context.Context, isbn string) (*apiclient.ISBNLookup, error) {
	key := "ISBN:" + isbn
	u := fmt.Sprintf("%s/api/books?bibkeys=%s&jscmd=data&format=json", c.baseURL, url.QueryEscape(key))

	var res map[string]record
	if err := c.get(ctx, u, &res); err != nil {
		return nil, err
	}
	rec, ok := res[key]
	if !ok || strings.TrimSpace(rec.Title) == "" {
		return &apiclient.ISBNLookup{Found: false, Message: "Aucun résultat Open Library pour l'ISBN " + isbn}, nil
	}
	return &apiclient.ISBNLookup{Found: true, Book: rec.bookInfo(isbn)}, nil
}

func (c *Client) get(ctx context.Context, u string, target any) error {
	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			select {
			case <-time.After(c.backoff << (i - 1)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		err := c.fetch(ctx, u, target)
		if err == nil {
			return nil
		}
		if !errors.Is(err, errRetryable) {
			var netErr interface{ Timeout() bool }
			if !errors.As(err, &netErr) {
				return err
			}
		}
		lastErr = err
	}
	return fmt.Errorf("after %d retries: %w", c.maxRetries, lastErr)
}

func (c *Client) fetch(ctx context.Context, u string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return json.NewDecoder(resp.Body).Decode(target)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("%w: %d", errRetryable, resp.StatusCode)
	default:
		return fmt.Errorf("openlibrary: unexpected status %d", resp.StatusCode)
	}
}
