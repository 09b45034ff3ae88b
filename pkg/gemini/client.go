package gemini

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"mime"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/boris-k201/capsule-to-epub/pkg/textenc"
)

const (
	// DefaultPort is the well-known Gemini port.
	DefaultPort = "1965"

	maxRedirects = 5
	maxMetaLen   = 1024
	maxBodyBytes = 10 << 20 // 10 MiB
)

// Status classes of the Gemini protocol.
const (
	StatusClassInput       = 1
	StatusClassSuccess     = 2
	StatusClassRedirect    = 3
	StatusClassTemporary   = 4
	StatusClassPermanent   = 5
	StatusClassCertificate = 6
)

// Response is the outcome of a Gemini request after redirects settled.
type Response struct {
	// Status is the two-digit Gemini status code.
	Status int
	// Meta is the header payload: a MIME type on success, an error
	// message otherwise.
	Meta string
	// MediaType is the parsed media type for success responses,
	// e.g. "text/gemini".
	MediaType string
	// Body holds the response body for success responses. Text bodies are
	// decoded to UTF-8 per the charset parameter of the media type.
	Body []byte
	// URL is the final URL after following redirects.
	URL string
}

// Success reports whether the response carries a 2x status.
func (r *Response) Success() bool { return r.Status/10 == StatusClassSuccess }

// Client speaks the Gemini protocol over TLS. Capsules almost universally
// use self-signed certificates, so verification is skipped; trust follows
// the protocol's TOFU model rather than the web PKI.
type Client struct {
	timeout time.Duration

	// dial is replaceable in tests.
	dial func(ctx context.Context, addr, serverName string) (net.Conn, error)
}

// NewClient builds a Gemini client with the given per-request timeout.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		timeout: timeout,
		dial:    dialTLS,
	}
}

func dialTLS(ctx context.Context, addr, serverName string) (net.Conn, error) {
	dialer := &tls.Dialer{
		Config: &tls.Config{
			ServerName:         serverName,
			InsecureSkipVerify: true, //nolint:gosec // Gemini TOFU model
			MinVersion:         tls.VersionTLS12,
		},
	}
	return dialer.DialContext(ctx, "tcp", addr)
}

// Get performs a Gemini request, following redirects up to a bounded depth.
// Transport failures and protocol violations return an error; valid
// non-success responses are returned to the caller for status handling.
func (c *Client) Get(ctx context.Context, rawURL string) (*Response, error) {
	current := rawURL
	for range maxRedirects + 1 {
		resp, err := c.request(ctx, current)
		if err != nil {
			return nil, err
		}
		if resp.Status/10 != StatusClassRedirect {
			return resp, nil
		}

		next, err := resolveRedirect(current, resp.Meta)
		if err != nil {
			return nil, fmt.Errorf("redirect from %s: %w", current, err)
		}
		current = next
	}
	return nil, fmt.Errorf("gemini request %s: too many redirects", rawURL)
}

// request performs a single round trip without redirect handling.
func (c *Client) request(ctx context.Context, rawURL string) (*Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	if u.Scheme != "gemini" {
		return nil, fmt.Errorf("unsupported scheme %q in %s", u.Scheme, rawURL)
	}
	host := u.Hostname()
	if host == "" {
		return nil, fmt.Errorf("url %q has no host", rawURL)
	}
	port := u.Port()
	if port == "" {
		port = DefaultPort
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	conn, err := c.dial(ctx, net.JoinHostPort(host, port), host)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", host, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return nil, fmt.Errorf("set deadline: %w", err)
		}
	}

	if _, err := conn.Write([]byte(rawURL + "\r\n")); err != nil {
		return nil, fmt.Errorf("send request to %s: %w", host, err)
	}

	reader := bufio.NewReader(io.LimitReader(conn, maxBodyBytes))
	header, err := reader.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("read response header from %s: %w", host, err)
	}

	status, meta, err := parseHeader(header)
	if err != nil {
		return nil, fmt.Errorf("response from %s: %w", host, err)
	}

	resp := &Response{Status: status, Meta: meta, URL: rawURL}
	if !resp.Success() {
		return resp, nil
	}

	mediaType := "text/gemini"
	var params map[string]string
	if meta != "" {
		if mt, p, err := mime.ParseMediaType(meta); err == nil {
			mediaType = mt
			params = p
		}
	}
	resp.MediaType = mediaType

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read body from %s: %w", host, err)
	}
	if strings.HasPrefix(mediaType, "text/") {
		body, err = textenc.Decode(body, params["charset"])
		if err != nil {
			return nil, fmt.Errorf("body from %s: %w", host, err)
		}
	}
	resp.Body = body

	return resp, nil
}

// parseHeader splits a "<status> <meta>" response header line.
func parseHeader(line string) (int, string, error) {
	line = strings.TrimRight(line, "\r\n")
	code, meta, _ := strings.Cut(line, " ")
	if len(code) != 2 {
		return 0, "", fmt.Errorf("malformed header %q", line)
	}
	status, err := strconv.Atoi(code)
	if err != nil || status < 10 || status > 69 {
		return 0, "", fmt.Errorf("malformed status in header %q", line)
	}
	if len(meta) > maxMetaLen {
		return 0, "", fmt.Errorf("header meta exceeds %d bytes", maxMetaLen)
	}
	return status, strings.TrimSpace(meta), nil
}

// resolveRedirect resolves a redirect target against the current URL.
func resolveRedirect(current, target string) (string, error) {
	if strings.TrimSpace(target) == "" {
		return "", fmt.Errorf("empty redirect target")
	}
	base, err := url.Parse(current)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("parse redirect target %q: %w", target, err)
	}
	return base.ResolveReference(ref).String(), nil
}
