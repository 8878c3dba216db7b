package todoist

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// Pull fetches all projects, active tasks and labels, concurrently, and replaces the client's in-memory data with
// them. This picks up changes made by other apps (e.g., items added from a mobile phone). To reduce API calls, if
// this client hasn't mutated anything since the last pull, and the last pull is more recent than the pull
// interval, this method won't do anything.
func (c *Client) Pull(ctx context.Context) error {
	c.mu.Lock()
	recent := time.Since(c.lastPulled) <= c.pullInterval
	c.mu.Unlock()
	if recent {
		return nil
	}
	return c.ForcePull(ctx)
}

// ForcePull is like Pull, but ignores the pull interval.
func (c *Client) ForcePull(ctx context.Context) error {
	var projects []*Project
	var tasks []*Task
	var labels []*Label
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.do(gctx, http.MethodGet, "/projects", nil, nil, &projects)
	})
	g.Go(func() error {
		return c.do(gctx, http.MethodGet, "/tasks", nil, nil, &tasks)
	})
	g.Go(func() error {
		return c.do(gctx, http.MethodGet, "/labels", nil, nil, &labels)
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("pull: %w", err)
	}
	// Only replace once everything arrived, so the mirror is never half refreshed.
	c.store.ReplaceProjects(projects)
	c.store.ReplaceTasks("", tasks)
	c.store.ReplaceLabels(labels)
	c.mu.Lock()
	c.lastPulled = time.Now()
	c.mu.Unlock()
	return nil
}
