package todoist

import (
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultEndpoint is the base URL of the Todoist REST API, v2.
const DefaultEndpoint = "https://api.todoist.com/rest/v2"

// ClientOption configures a Client built with NewClient.
type ClientOption func(*Client) error

// WithEndpoint sets the base URL of the API. Mostly useful in tests.
func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) error {
		c.endpoint = endpoint
		return nil
	}
}

// WithWireLog is a client option to log all requests and responses to the specified log file. Useful for debugging
// the client itself, shouldn't be needed in normal operation.
func WithWireLog(pathname string) ClientOption {
	return func(c *Client) error {
		f, err := os.OpenFile(pathname, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
		if err == nil {
			c.wlog = f
		}
		return err
	}
}

// WithHTTPClient replaces the default HTTP client, e.g., to set a different timeout.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) error {
		c.hc = hc
		return nil
	}
}

// WithRateLimit caps the number of requests per second, allowing bursts of the given size. A non-positive rate
// disables limiting.
func WithRateLimit(perSecond float64, burst int) ClientOption {
	return func(c *Client) error {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
		} else {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
		return nil
	}
}

// WithPullInterval sets the minimum time between two pulls (see Pull).
func WithPullInterval(d time.Duration) ClientOption {
	return func(c *Client) error {
		c.pullInterval = d
		return nil
	}
}

// WithStore makes the client mirror into the given store rather than a new empty one.
func WithStore(s *Store) ClientOption {
	return func(c *Client) error {
		c.store = s
		return nil
	}
}

// Client is a Todoist REST API client, for the v2 API version. For more documentation on the API see
// https://developer.todoist.com/rest/v2/.
type Client struct {
	endpoint string

	// The secret token to authenticate and authorize API calls.
	token string

	hc      *http.Client
	limiter *rate.Limiter

	// If non-nil, log all requests and responses to this writer, one per line, in JSON format.
	wlog   io.Writer
	wlogMu sync.Mutex

	// The local mirror of remote entities.
	store *Store

	pullInterval time.Duration

	mu         sync.Mutex
	lastPulled time.Time
}

// NewClient creates a new client authenticated and authorized by the given token. The default rate limit keeps
// within the 450 requests per 15 minutes allowed by Todoist.
func NewClient(token string, opts ...ClientOption) (*Client, error) {
	c := &Client{
		endpoint:     DefaultEndpoint,
		token:        token,
		hc:           &http.Client{Timeout: 30 * time.Second},
		limiter:      rate.NewLimiter(rate.Limit(0.5), 10),
		wlog:         io.Discard,
		store:        NewStore(),
		pullInterval: time.Minute,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Store gives access to the local mirror.
func (c *Client) Store() *Store {
	return c.store
}

// Load loads the client state from the state files in dir. See Store.Load.
func (c *Client) Load(dir string) error {
	return c.store.Load(dir)
}

// Dump saves the client's in-memory state to dir. The counterpart method to load the state is Load. Dumping and
// loading lets the UI render immediately on start-up, before the first pull completes.
func (c *Client) Dump(dir string) error {
	return c.store.Dump(dir)
}

// ProjectByID looks up the project by id in the client's data (no remote call is made).
func (c *Client) ProjectByID(id ID) (*Project, bool) {
	return c.store.ProjectByID(id)
}

// TaskByID is analogous to ProjectByID.
func (c *Client) TaskByID(id ID) (*Task, bool) {
	return c.store.TaskByID(id)
}

// LabelByName is analogous to ProjectByID, but returns nil if not found.
func (c *Client) LabelByName(name string) *Label {
	return c.store.LabelByName(name)
}

// CommentByID is analogous to ProjectByID.
func (c *Client) CommentByID(id ID) (*Comment, bool) {
	return c.store.CommentByID(id)
}

// Favorites returns the favorite projects from the client's data.
func (c *Client) Favorites() []*Project {
	return c.store.Favorites()
}

// mutated is called after each successful mutation so that the next Pull is not skipped.
func (c *Client) mutated() {
	c.mu.Lock()
	c.lastPulled = time.Time{}
	c.mu.Unlock()
}
