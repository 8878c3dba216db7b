package todoist

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Label describes a personal label. Tasks refer to labels by name, not by id. Treat as read-only.
type Label struct {
	ID         ID     `json:"id"`
	Name       string `json:"name"`
	Color      string `json:"color"`
	Order      int    `json:"order"`
	IsFavorite bool   `json:"is_favorite"`
}

// LabelPatch is used to add labels (see AddLabel).
type LabelPatch struct {
	attrs attrs
	err   error
}

func NewLabelPatch() *LabelPatch {
	return &LabelPatch{attrs: make(attrs)}
}

func (label *LabelPatch) WithName(value string) *LabelPatch {
	if err := label.attrs.set("name", value); err != nil && label.err == nil {
		label.err = err
	}
	return label
}

// MarshalJSON implements json.Marshaler.
func (label *LabelPatch) MarshalJSON() ([]byte, error) {
	if label.err != nil {
		return nil, label.err
	}
	return label.attrs.marshal(), nil
}

// GetLabels fetches all personal labels and replaces the local copy with them.
func (c *Client) GetLabels(ctx context.Context) ([]*Label, error) {
	var labels []*Label
	if err := c.do(ctx, http.MethodGet, "/labels", nil, nil, &labels); err != nil {
		return nil, fmt.Errorf("get labels: %w", err)
	}
	c.store.ReplaceLabels(labels)
	return labels, nil
}

func (c *Client) AddLabel(ctx context.Context, patch *LabelPatch) (*Label, error) {
	if name, _ := patch.attrs.str("name"); strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("add label: %w", ErrEmptyName)
	}
	var label Label
	if err := c.do(ctx, http.MethodPost, "/labels", nil, patch, &label); err != nil {
		return nil, fmt.Errorf("add label: %w", err)
	}
	c.store.AddLabel(&label)
	c.mutated()
	return &label, nil
}

func (c *Client) DeleteLabel(ctx context.Context, id ID) error {
	if err := c.do(ctx, http.MethodDelete, "/labels/"+id.String(), nil, nil, nil); err != nil {
		return fmt.Errorf("delete label %s: %w", id, err)
	}
	c.store.RemoveLabel(id)
	c.mutated()
	return nil
}
