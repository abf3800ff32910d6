package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/timenexus/timenexus/pkg/observability"
)

// Client provides the HTTP plumbing shared by the extraction apps:
// default headers, JSON and XML bodies, status checks and HTTP hooks.
// Requests are never retried.
type Client struct {
	http    *http.Client
	headers map[string]string
}

// NewClient creates a Client sending headers with every request.
// Pass nil for headers if no default headers are needed.
func NewClient(headers map[string]string) *Client {
	return &Client{http: NewHTTPClient(), headers: headers}
}

// WithHTTPClient replaces the underlying HTTP client and returns c.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

// Response is a fully read HTTP response.
type Response struct {
	Status int
	Body   []byte
}

// OK reports whether the status is 2xx.
func (r *Response) OK() bool { return r.Status >= 200 && r.Status < 300 }

// Do sends a request and reads the whole response. Only transport failures
// are errors: callers inspect the status themselves, since apps describe
// failures in the body.
func (c *Client) Do(ctx context.Context, method, rawURL, contentType string, body []byte) (*Response, error) {
	return c.do(ctx, method, rawURL, contentType, body, nil)
}

func (c *Client) do(ctx context.Context, method, rawURL, contentType string, body []byte, headers map[string]string) (*Response, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, r)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	host, path := hostPath(rawURL)
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, method, host, path, err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		hooks.OnError(ctx, method, host, path, err)
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	hooks.OnResponse(ctx, method, host, path, resp.StatusCode, time.Since(start))
	return &Response{Status: resp.StatusCode, Body: data}, nil
}

// GetJSON performs a GET and decodes a 2xx JSON answer into v.
func (c *Client) GetJSON(ctx context.Context, rawURL string, v any) error {
	resp, err := c.Do(ctx, http.MethodGet, rawURL, "", nil)
	if err != nil {
		return err
	}
	if err := CheckStatus(resp.Status); err != nil {
		return err
	}
	return json.Unmarshal(resp.Body, v)
}

// PostJSON sends in as a JSON body.
func (c *Client) PostJSON(ctx context.Context, rawURL string, in any) (*Response, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, http.MethodPost, rawURL, "application/json", body)
}

// PostSOAP sends envelope as an XML document for the SOAP action.
func (c *Client) PostSOAP(ctx context.Context, rawURL, action string, envelope any) (*Response, error) {
	body, err := xml.Marshal(envelope)
	if err != nil {
		return nil, err
	}
	body = append([]byte(xml.Header), body...)
	return c.do(ctx, http.MethodPost, rawURL, "text/xml; charset=utf-8", body, map[string]string{
		"Accept":     "text/xml, multipart/related",
		"SOAPAction": action,
	})
}

// Delete sends a DELETE and checks the status.
func (c *Client) Delete(ctx context.Context, rawURL string) error {
	resp, err := c.Do(ctx, http.MethodDelete, rawURL, "", nil)
	if err != nil {
		return err
	}
	return CheckStatus(resp.Status)
}

// CheckStatus maps a status code to ErrNotFound, ErrStatus or nil.
func CheckStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	default:
		return fmt.Errorf("%w: %d", ErrStatus, code)
	}
}

func hostPath(rawURL string) (string, string) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", rawURL
	}
	return u.Host, u.Path
}
