package stream

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"
)

// SSEOptions configures an SSETransport.
type SSEOptions struct {
	URL      string            // http:// or https:// event stream endpoint
	Identity Identity          // Sent as headers and query parameters
	Headers  map[string]string // Extra request headers (optional)
}

// SSETransport opens a receive-only Server-Sent Events stream.
// Identity travels with the initial request; the server starts pushing
// snapshots on its own once the stream is open.
type SSETransport struct {
	opts   SSEOptions
	client *resty.Client
}

// NewSSETransport creates an SSE transport. A nil client creates a dedicated one
// without a request timeout.
func NewSSETransport(opts SSEOptions, client *resty.Client) *SSETransport {
	if client == nil {
		client = resty.New()
	}
	return &SSETransport{opts: opts, client: client}
}

// Name implements Transport.
func (t *SSETransport) Name() string {
	return "sse"
}

// Dial issues the stream request and returns once the server accepted it.
func (t *SSETransport) Dial(ctx context.Context) (Conn, error) {
	query := map[string]string{}
	if t.opts.Identity.UserID != "" {
		query["userId"] = t.opts.Identity.UserID
	}
	if t.opts.Identity.Role != "" {
		query["role"] = t.opts.Identity.Role
	}
	if t.opts.Identity.ClientID != "" {
		query["clientId"] = t.opts.Identity.ClientID
	}

	resp, err := t.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		SetHeader("Accept", "text/event-stream").
		SetHeader("Cache-Control", "no-cache").
		SetHeader("X-User-ID", t.opts.Identity.UserID).
		SetHeader("X-User-Role", t.opts.Identity.Role).
		SetHeaders(t.opts.Headers).
		SetQueryParams(query).
		Get(t.opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open event stream %s: %w", t.opts.URL, err)
	}

	body := resp.RawBody()
	if resp.StatusCode() != http.StatusOK {
		if body != nil {
			_ = body.Close()
		}
		return nil, fmt.Errorf("event stream returned status %d", resp.StatusCode())
	}

	return &sseConn{body: body, reader: bufio.NewReader(body)}, nil
}

// sseConn reads events from an open stream body.
type sseConn struct {
	body      io.ReadCloser
	reader    *bufio.Reader
	closeOnce sync.Once
	closeErr  error
}

// Read returns the data payload of the next event. Multi-line data is joined
// with "\n"; comments, event names and ids are skipped.
func (c *sseConn) Read(ctx context.Context) ([]byte, error) {
	var data []string
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		line, err := c.reader.ReadString('\n')
		if err != nil {
			// A partial event at end of stream is discarded
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")

		if line == "" {
			if len(data) > 0 {
				return []byte(strings.Join(data, "\n")), nil
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		if field == "data" {
			data = append(data, value)
		}
	}
}

// Close closes the stream body, unblocking a pending Read.
func (c *sseConn) Close() error {
	c.closeOnce.Do(func() {
		if c.body != nil {
			c.closeErr = c.body.Close()
		}
	})
	return c.closeErr
}
