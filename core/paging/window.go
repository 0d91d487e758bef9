package paging

import (
	"strconv"
	"strings"
)

// DefaultMaxVisible is the number of page numbers shown around the current page.
const DefaultMaxVisible = 5

// Entry kinds
const (
	KindPage     = "page"
	KindEllipsis = "ellipsis"
)

// Ellipsis is the text rendered for skipped pages.
const Ellipsis = "…"

// Entry is one page control: a page number or an ellipsis.
type Entry struct {
	Kind    string `json:"type"`
	Page    int    `json:"page,omitempty"`
	Current bool   `json:"current,omitempty"`
}

func (e Entry) IsEllipsis() bool { return e.Kind == KindEllipsis }

func (e Entry) String() string {
	if e.IsEllipsis() {
		return Ellipsis
	}
	return strconv.Itoa(e.Page)
}

// Window is the ordered list of page controls to render.
type Window []Entry

// Pages returns the page numbers of the window, ellipses excluded.
func (w Window) Pages() []int {
	pages := make([]int, 0, len(w))
	for _, e := range w {
		if !e.IsEllipsis() {
			pages = append(pages, e.Page)
		}
	}
	return pages
}

func (w Window) String() string {
	parts := make([]string, 0, len(w))
	for _, e := range w {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, " ")
}

// Bounds returns the first and last page of the block of numbers centered on current.
// When the block gets clipped by the last page it is shifted back so that it keeps maxVisible pages.
func Bounds(current, total, maxVisible int) (start, end int) {
	if maxVisible < 1 {
		maxVisible = DefaultMaxVisible
	}
	half := maxVisible / 2
	start = max(1, current-half)
	end = min(total, start+maxVisible-1)
	if end-start < maxVisible-1 {
		start = max(1, end-maxVisible+1)
	}
	return start, end
}

// ComputeWindow returns the page controls for current out of total pages.
// The first and last pages are always reachable; skipped runs of pages are collapsed into a single ellipsis.
// An empty window is returned when there is nothing to paginate (total <= 1).
// current is expected to be in [1, total]; out of range values are clamped by the window bounds.
func ComputeWindow(current, total, maxVisible int) Window {
	if total <= 1 {
		return Window{}
	}
	start, end := Bounds(current, total, maxVisible)

	w := make(Window, 0, end-start+5)
	if start > 1 {
		w = append(w, page(1, current))
		if start > 2 {
			w = append(w, Entry{Kind: KindEllipsis})
		}
	}
	for i := start; i <= end; i++ {
		w = append(w, page(i, current))
	}
	if end < total {
		if end < total-1 {
			w = append(w, Entry{Kind: KindEllipsis})
		}
		w = append(w, page(total, current))
	}
	return w
}

func page(n, current int) Entry {
	return Entry{Kind: KindPage, Page: n, Current: n == current}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
