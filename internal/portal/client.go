package portal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
)

const (
	DefaultURL = "https://astrolabe.nwnarelith.com/api/portal"

	referer        = "https://astrolabe.nwnarelith.com/portal"
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/141.0.0.0 Safari/537.36 Edg/141.0.0.0"
	acceptLanguage = "en-US,en;q=0.9,en-CA;q=0.8"

	// Static forum/clearance cookies sent ahead of the user session.
	cookiePrefix = "phpbb3_1qw03_u=8491; phpbb3_1qw03_k=u03of03lxhx4h8b5; phpbb3_1qw03_sid=df5fbb3a074b8a3b9b682a7ec09780e5; cf_clearance=4Wu_gK3PFW6nIs0MMIDmv3fREwjJwUx63qJuvlhLezE-1761446248-1.2.1.1-690EM.03J5gS80x0ZBtYzpxEZersUEig.MyenbkvDvqaY9XnTiLUHoO65Feen3nSGxjFbcqVYgnS44SdXxAlkJw11DIiAVlVpXSHFipdi4aIbRarB9Sv.LbK9xBOYkJ5e3QOjR8QmV0BbgEvE2WFDVRd_p4xIA3cm0acjqpkDmZRloZKz1fLs7gCOZQUHIY37PFxMfFIjVIJitJPpIbDcVPKQ3RB4_cD05ctq9r5uEM;"

	maxExcerpt = 300
	maxBody    = 8 << 20
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrNonJSON is returned when a 2xx body is not valid JSON.
var ErrNonJSON = errors.New("non-JSON response")

// StatusError reports a non-2xx response. Excerpt holds at most the first 300
// characters of the body.
type StatusError struct {
	Code    int
	Excerpt string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d %s", e.Code, e.Excerpt)
}

// Client performs the single roster request.
type Client struct {
	url  string
	http *http.Client
}

func NewClient(url string) *Client {
	if url == "" {
		url = DefaultURL
	}
	return &Client{
		url: url,
		http: &http.Client{
			Timeout: 15 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Fetch issues one GET with the credential embedded in the cookie header.
func (c *Client) Fetch(ctx context.Context, credential string) (*Roster, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", acceptLanguage)
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Cookie", Cookie(credential))
	req.Header.Set("Referer", referer)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("portal: request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("portal: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Excerpt: excerpt(string(body))}
	}

	return Decode(body)
}

// Cookie composes the cookie header for a session token.
func Cookie(credential string) string {
	return cookiePrefix + " user-session=" + credential
}

func excerpt(s string) string {
	r := []rune(s)
	if len(r) <= maxExcerpt {
		return s
	}
	return string(r[:maxExcerpt])
}
