package paging

import (
	"fmt"
	"strings"
)

// Controls is everything a view needs to render a pagination bar.
type Controls struct {
	Current    int    `json:"current"`
	TotalPages int    `json:"total_pages"`
	HasPrev    bool   `json:"has_prev"`
	HasNext    bool   `json:"has_next"`
	PrevPage   int    `json:"prev_page,omitempty"`
	NextPage   int    `json:"next_page,omitempty"`
	Pages      Window `json:"pages"`
}

// NewControls returns nil when there is a single page (no pagination bar is rendered at all).
func NewControls(current, total, maxVisible int) *Controls {
	if total <= 1 {
		return nil
	}
	c := &Controls{
		Current:    current,
		TotalPages: total,
		HasPrev:    current > 1,
		HasNext:    current < total,
		Pages:      ComputeWindow(current, total, maxVisible),
	}
	if c.HasPrev {
		c.PrevPage = current - 1
	}
	if c.HasNext {
		c.NextPage = current + 1
	}
	return c
}

// Render renders the controls on a single line, eg. "‹ Prev  1 … 5 6 [7] 8 9 … 20  Next ›".
// Disabled prev/next links are left out.
func (c *Controls) Render() string {
	if c == nil {
		return ""
	}
	var b strings.Builder
	if c.HasPrev {
		b.WriteString("‹ Prev  ")
	}
	for i, e := range c.Pages {
		if i > 0 {
			b.WriteByte(' ')
		}
		if e.Current {
			fmt.Fprintf(&b, "[%d]", e.Page)
		} else {
			b.WriteString(e.String())
		}
	}
	if c.HasNext {
		b.WriteString("  Next ›")
	}
	return b.String()
}
