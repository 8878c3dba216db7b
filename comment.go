package todoist

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Comment holds a subset of attributes of a Todoist comment on a task. Treat as read-only, use CommentPatch to add
// comments.
type Comment struct {
	ID        ID     `json:"id"`
	TaskID    ID     `json:"task_id,omitempty"`
	ProjectID ID     `json:"project_id,omitempty"`
	Content   string `json:"content"`
	PostedAt  string `json:"posted_at"`
}

// Time parses the posting time. It returns the zero time if the server sent something unexpected.
func (comment *Comment) Time() time.Time {
	t, _ := time.Parse(time.RFC3339, comment.PostedAt)
	return t
}

type CommentPatch struct {
	attrs attrs
	err   error
}

func NewCommentPatch() *CommentPatch {
	return &CommentPatch{attrs: make(attrs)}
}

func (comment *CommentPatch) WithTaskID(value ID) *CommentPatch {
	comment.setErr(comment.attrs.set("task_id", value))
	return comment
}

func (comment *CommentPatch) WithContent(value string) *CommentPatch {
	comment.setErr(comment.attrs.set("content", value))
	return comment
}

func (comment *CommentPatch) setErr(err error) {
	if comment.err == nil {
		comment.err = err
	}
}

// Empty reports whether the comment has no content, in which case there's no point in sending it.
func (comment *CommentPatch) Empty() bool {
	content, _ := comment.attrs.str("content")
	return strings.TrimSpace(content) == ""
}

// MarshalJSON implements json.Marshaler.
func (comment *CommentPatch) MarshalJSON() ([]byte, error) {
	if comment.err != nil {
		return nil, comment.err
	}
	return comment.attrs.marshal(), nil
}

// GetComments fetches the comments of a task and replaces the local copy of them.
func (c *Client) GetComments(ctx context.Context, taskID ID) ([]*Comment, error) {
	q := make(url.Values)
	q.Set("task_id", taskID.String())
	var comments []*Comment
	if err := c.do(ctx, http.MethodGet, "/comments", q, nil, &comments); err != nil {
		return nil, fmt.Errorf("get comments of task %s: %w", taskID, err)
	}
	c.store.ReplaceComments(taskID, comments)
	return comments, nil
}

func (c *Client) AddComment(ctx context.Context, patch *CommentPatch) (*Comment, error) {
	if patch.Empty() {
		return nil, fmt.Errorf("add comment: %w", ErrEmptyName)
	}
	var comment Comment
	if err := c.do(ctx, http.MethodPost, "/comments", nil, patch, &comment); err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}
	c.store.AddComment(&comment)
	c.mutated()
	return &comment, nil
}

func (c *Client) DeleteComment(ctx context.Context, id ID) error {
	if err := c.do(ctx, http.MethodDelete, "/comments/"+id.String(), nil, nil, nil); err != nil {
		return fmt.Errorf("delete comment %s: %w", id, err)
	}
	c.store.RemoveComment(id)
	c.mutated()
	return nil
}
