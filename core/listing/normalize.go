// Package listing turns the list payloads of the course backend into one canonical shape.
//
// The backend has answered list requests with several payload shapes over time
// (bare arrays, `{data: [...]}`, `{data: {courses, pagination}}`, ...). Normalize recognizes
// each of them, in a fixed priority order, so that views only ever deal with Response.
package listing

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Kinds of malformed payloads
const (
	KindEmpty             = "empty"
	KindNotJSON           = "not_json"
	KindUnrecognizedShape = "unrecognized_shape"
	KindUndecodableItems  = "undecodable_items"
)

// Shapes of recognized payloads, by priority.
const (
	ShapeUnknown     Shape = iota
	ShapeNested            // {data: {<key>: [...], pagination: {...}}}
	ShapeTopLevel          // {<key>: [...], pagination: {...}}
	ShapeBareArray         // [...]
	ShapeNestedItems       // {data: {<key>: [...]}}
	ShapeDataArray         // {data: [...], meta?: {...}}
	ShapeDataObject        // {data: {...}}
	ShapeResultArray       // {result: [...]}
)

var shapeNames = map[Shape]string{
	ShapeUnknown:     "unknown",
	ShapeNested:      "nested",
	ShapeTopLevel:    "top_level",
	ShapeBareArray:   "bare_array",
	ShapeNestedItems: "nested_items",
	ShapeDataArray:   "data_array",
	ShapeDataObject:  "data_object",
	ShapeResultArray: "result_array",
}

type Shape int

func (s Shape) String() string { return shapeNames[s] }

// Pagination describes the page a Response holds.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// Response is the canonical list payload.
type Response[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// Options tune the matching of a payload.
type Options struct {
	// Keys are the domain keys (eg. "courses") holding items besides "items".
	Keys []string
	// Limit is the requested page size, used when the payload has none.
	Limit int
	// AllowSingle accepts `{data: {...}}` as a one item list.
	AllowSingle bool
}

func (o Options) keys() []string {
	keys := make([]string, 0, len(o.Keys)+1)
	keys = append(keys, o.Keys...)
	return append(keys, "items")
}

// MalformedError signals a payload that matched no known shape.
// It is a diagnostic: the Response returned alongside it is a usable empty list.
type MalformedError struct {
	Kind string
	Err  error
}

func (e *MalformedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed list response (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("malformed list response (%s)", e.Kind)
}

func (e *MalformedError) Unwrap() error { return e.Err }

// Empty returns the canonical empty response for a requested page size.
func Empty[T any](limit int) Response[T] {
	if limit < 1 {
		limit = 1
	}
	return Response[T]{
		Items:      []T{},
		Pagination: Pagination{Total: 0, Page: 1, Limit: limit, TotalPages: 1},
	}
}

// Normalize extracts the items and pagination of raw.
// It never fails hard: an unknown payload yields Empty and a *MalformedError.
func Normalize[T any](raw []byte, opts Options) (Response[T], error) {
	resp, _, err := Match[T](raw, opts)
	return resp, err
}

// Match is Normalize, also reporting the shape that was recognized.
func Match[T any](raw []byte, opts Options) (Response[T], Shape, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Empty[T](opts.Limit), ShapeUnknown, &MalformedError{Kind: KindEmpty}
	}
	if !json.Valid(raw) {
		return Empty[T](opts.Limit), ShapeUnknown, &MalformedError{Kind: KindNotJSON}
	}

	m, ok := match(raw, opts)
	if !ok {
		return Empty[T](opts.Limit), ShapeUnknown, &MalformedError{Kind: KindUnrecognizedShape}
	}

	var items []T
	if m.single {
		var item T
		if err := json.Unmarshal(m.items, &item); err != nil {
			return Empty[T](opts.Limit), m.shape, &MalformedError{Kind: KindUndecodableItems, Err: err}
		}
		items = []T{item}
	} else if err := json.Unmarshal(m.items, &items); err != nil {
		return Empty[T](opts.Limit), m.shape, &MalformedError{Kind: KindUndecodableItems, Err: err}
	}
	if items == nil {
		items = []T{}
	}

	var pg Pagination
	if m.pagination != nil {
		// a pagination object with unexpected field types is repaired from the items
		_ = json.Unmarshal(m.pagination, &pg)
		pg = repair(pg, len(items), opts.Limit)
	} else {
		pg = synthesize(len(items))
	}
	return Response[T]{Items: items, Pagination: pg}, m.shape, nil
}

type matched struct {
	shape      Shape
	items      json.RawMessage
	pagination json.RawMessage // nil when the payload has none
	single     bool
}

func match(raw json.RawMessage, opts Options) (matched, bool) {
	if isArray(raw) {
		return matched{shape: ShapeBareArray, items: raw}, true
	}
	if !isObject(raw) {
		return matched{}, false
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return matched{}, false
	}
	var data map[string]json.RawMessage
	if d, ok := top["data"]; ok && isObject(d) {
		_ = json.Unmarshal(d, &data)
	}

	keys := opts.keys()

	// {data: {<key>: [...], pagination: {...}}}
	if items, ok := arrayAt(data, keys); ok {
		if pg, ok := data["pagination"]; ok && isObject(pg) {
			return matched{shape: ShapeNested, items: items, pagination: pg}, true
		}
	}
	// {<key>: [...], pagination: {...}}
	if items, ok := arrayAt(top, keys); ok {
		if pg, ok := top["pagination"]; ok && isObject(pg) {
			return matched{shape: ShapeTopLevel, items: items, pagination: pg}, true
		}
	}
	// {data: {<key>: [...]}}
	if items, ok := arrayAt(data, keys); ok {
		return matched{shape: ShapeNestedItems, items: items}, true
	}
	// {data: [...], meta?: {...}}
	if d, ok := top["data"]; ok && isArray(d) {
		m := matched{shape: ShapeDataArray, items: d}
		if meta, ok := top["meta"]; ok && isObject(meta) {
			m.pagination = meta
		}
		return m, true
	}
	// {data: {...}}
	if d, ok := top["data"]; ok && opts.AllowSingle && isObject(d) {
		return matched{shape: ShapeDataObject, items: d, single: true}, true
	}
	// {result: [...]}
	if r, ok := top["result"]; ok && isArray(r) {
		return matched{shape: ShapeResultArray, items: r}, true
	}
	return matched{}, false
}

func arrayAt(obj map[string]json.RawMessage, keys []string) (json.RawMessage, bool) {
	if obj == nil {
		return nil, false
	}
	for _, k := range keys {
		if v, ok := obj[k]; ok && isArray(v) {
			return v, true
		}
	}
	return nil, false
}

func isArray(raw json.RawMessage) bool  { return firstByte(raw) == '[' }
func isObject(raw json.RawMessage) bool { return firstByte(raw) == '{' }

func firstByte(raw json.RawMessage) byte {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	return raw[0]
}

// synthesize describes a complete, unpaginated list.
func synthesize(n int) Pagination {
	limit := n
	if limit < 1 {
		limit = 1
	}
	return Pagination{Total: n, Page: 1, Limit: limit, TotalPages: 1}
}

// repair enforces total >= 0, page >= 1, limit >= 1 and totalPages = max(1, ceil(total/limit)).
// The pagination is then reconciled with the n items received: the limit is raised to at least n,
// and a non empty page p implies total >= (p-1)*limit + n.
func repair(pg Pagination, n, requestedLimit int) Pagination {
	if pg.Total < 0 {
		pg.Total = 0
	}
	if pg.Page < 1 {
		pg.Page = 1
	}
	if pg.Limit < 1 {
		switch {
		case requestedLimit > 0:
			pg.Limit = requestedLimit
		case n > 0:
			pg.Limit = n
		default:
			pg.Limit = 1
		}
	}
	if n > pg.Limit {
		pg.Limit = n
	}
	if n > 0 {
		if seen := (pg.Page-1)*pg.Limit + n; seen > pg.Total {
			pg.Total = seen
		}
	}
	pg.TotalPages = TotalPages(pg.Total, pg.Limit)
	return pg
}

// IsMalformed reports whether err is, or wraps, a *MalformedError.
func IsMalformed(err error) bool {
	var merr *MalformedError
	return errors.As(err, &merr)
}

// TotalPages returns ceil(total/limit), at least 1.
func TotalPages(total, limit int) int {
	if limit < 1 || total < 1 {
		return 1
	}
	return (total + limit - 1) / limit
}
