package todoist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	uuid "github.com/nu7hatch/gouuid"
	log "github.com/sirupsen/logrus"
)

var (
	// ErrStatusCode is returned in case the response from the API contains a status code that the client can't
	// handle.
	ErrStatusCode = errors.New("unhandled status code")

	// ErrNotFound is returned when the API responds 404, i.e., the entity does not exist (anymore).
	ErrNotFound = errors.New("not found")
)

// wireEntry is one line of the wire log.
type wireEntry struct {
	Type      string `json:"type"`
	Method    string `json:"method,omitempty"`
	Path      string `json:"path,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Status    int    `json:"status,omitempty"`
	Body      string `json:"body,omitempty"`
}

func (c *Client) logWire(e wireEntry) {
	b, err := json.Marshal(e)
	if err != nil {
		return
	}
	c.wlogMu.Lock()
	defer c.wlogMu.Unlock()
	_, _ = c.wlog.Write(append(b, '\n'))
}

// do performs one API call. The in value, if non-nil, is sent as the JSON body; the response body, if out is
// non-nil and the status is 200, is decoded into out. Mutating requests carry a fresh X-Request-Id so that the
// server can discard duplicates.
func (c *Client) do(ctx context.Context, method, pathname string, query url.Values, in, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s %s: rate limit: %w", method, pathname, err)
	}
	target := c.endpoint + pathname
	if len(query) != 0 {
		target += "?" + query.Encode()
	}
	var reqBody []byte
	if in != nil {
		var err error
		if reqBody, err = json.Marshal(in); err != nil {
			return fmt.Errorf("%s %s: %w", method, pathname, err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, pathname, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	var requestID string
	if method != http.MethodGet {
		u, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("%s %s: request id: %w", method, pathname, err)
		}
		requestID = u.String()
		req.Header.Set("X-Request-Id", requestID)
	}
	c.logWire(wireEntry{Type: "request", Method: method, Path: pathname, RequestID: requestID, Body: string(reqBody)})

	r, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, pathname, err)
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.WithFields(log.Fields{
				"op":    method + " " + pathname,
				"cause": err,
			}).Warning("Could not close response body")
		}
	}()
	b, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("%s %s, read body: %w", method, pathname, err)
	}
	c.logWire(wireEntry{Type: "response", Method: method, Path: pathname, RequestID: requestID, Status: r.StatusCode, Body: string(b)})
	log.WithFields(log.Fields{
		"method": method,
		"path":   pathname,
		"code":   r.StatusCode,
	}).Debug("API call")

	switch r.StatusCode {
	case http.StatusOK:
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(b, out); err != nil {
			return fmt.Errorf("%s %s, unmarshal: %w", method, pathname, err)
		}
		return nil
	case http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", method, pathname, ErrNotFound)
	default:
		// Possibly superfluous, as the caller should handle the error, but the response text is only available
		// here.
		log.WithFields(log.Fields{
			"op":   method + " " + pathname,
			"code": r.StatusCode,
			"text": string(b),
		}).Error("Unhandled response status code")
		return fmt.Errorf("%d: %w", r.StatusCode, ErrStatusCode)
	}
}
