package listing

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID    string `json:"_id"`
	Title string `json:"title"`
}

var courseOpts = Options{Keys: []string{"courses"}}

func TestNormalize(t *testing.T) {
	a, b, c := item{"1", "Go"}, item{"2", "Rust"}, item{"3", "Zig"}

	tests := []struct {
		name      string
		raw       string
		opts      Options
		wantItems []item
		wantPg    Pagination
		wantShape Shape
		wantKind  string
	}{
		{
			name:      "nested courses with pagination",
			raw:       `{"success":true,"data":{"courses":[{"_id":"1","title":"Go"},{"_id":"2","title":"Rust"},{"_id":"3","title":"Zig"}],"pagination":{"total":10,"page":1,"limit":3,"totalPages":4}}}`,
			opts:      courseOpts,
			wantItems: []item{a, b, c},
			wantPg:    Pagination{Total: 10, Page: 1, Limit: 3, TotalPages: 4},
			wantShape: ShapeNested,
		},
		{
			name:      "nested items with pagination",
			raw:       `{"data":{"items":[{"_id":"1","title":"Go"}],"pagination":{"total":1,"page":1,"limit":8,"totalPages":1}}}`,
			wantItems: []item{a},
			wantPg:    Pagination{Total: 1, Page: 1, Limit: 8, TotalPages: 1},
			wantShape: ShapeNested,
		},
		{
			name:      "top level courses with pagination",
			raw:       `{"courses":[{"_id":"1","title":"Go"},{"_id":"2","title":"Rust"}],"pagination":{"total":4,"page":2,"limit":2,"totalPages":2}}`,
			opts:      courseOpts,
			wantItems: []item{a, b},
			wantPg:    Pagination{Total: 4, Page: 2, Limit: 2, TotalPages: 2},
			wantShape: ShapeTopLevel,
		},
		{
			name:      "nested shape wins over top level",
			raw:       `{"courses":[{"_id":"3","title":"Zig"}],"pagination":{"total":1,"page":1,"limit":1,"totalPages":1},"data":{"courses":[{"_id":"1","title":"Go"}],"pagination":{"total":5,"page":1,"limit":1,"totalPages":5}}}`,
			opts:      courseOpts,
			wantItems: []item{a},
			wantPg:    Pagination{Total: 5, Page: 1, Limit: 1, TotalPages: 5},
			wantShape: ShapeNested,
		},
		{
			name:      "bare array",
			raw:       `[{"_id":"1","title":"Go"},{"_id":"2","title":"Rust"}]`,
			wantItems: []item{a, b},
			wantPg:    Pagination{Total: 2, Page: 1, Limit: 2, TotalPages: 1},
			wantShape: ShapeBareArray,
		},
		{
			name:      "empty bare array",
			raw:       `[]`,
			wantItems: []item{},
			wantPg:    Pagination{Total: 0, Page: 1, Limit: 1, TotalPages: 1},
			wantShape: ShapeBareArray,
		},
		{
			name:      "nested courses without pagination",
			raw:       `{"data":{"courses":[{"_id":"1","title":"Go"}]}}`,
			opts:      courseOpts,
			wantItems: []item{a},
			wantPg:    Pagination{Total: 1, Page: 1, Limit: 1, TotalPages: 1},
			wantShape: ShapeNestedItems,
		},
		{
			name:      "data array with meta",
			raw:       `{"success":true,"statusCode":200,"data":[{"_id":"1","title":"Go"},{"_id":"2","title":"Rust"}],"meta":{"total":7,"page":2,"limit":2}}`,
			wantItems: []item{a, b},
			wantPg:    Pagination{Total: 7, Page: 2, Limit: 2, TotalPages: 4},
			wantShape: ShapeDataArray,
		},
		{
			name:      "data array without meta",
			raw:       `{"data":[{"_id":"3","title":"Zig"}]}`,
			wantItems: []item{c},
			wantPg:    Pagination{Total: 1, Page: 1, Limit: 1, TotalPages: 1},
			wantShape: ShapeDataArray,
		},
		{
			name:      "single data object",
			raw:       `{"data":{"_id":"2","title":"Rust"}}`,
			opts:      Options{AllowSingle: true},
			wantItems: []item{b},
			wantPg:    Pagination{Total: 1, Page: 1, Limit: 1, TotalPages: 1},
			wantShape: ShapeDataObject,
		},
		{
			name:      "result array",
			raw:       `{"result":[{"_id":"1","title":"Go"}]}`,
			wantItems: []item{a},
			wantPg:    Pagination{Total: 1, Page: 1, Limit: 1, TotalPages: 1},
			wantShape: ShapeResultArray,
		},
		{
			name:      "partial pagination is repaired",
			raw:       `{"items":[{"_id":"1","title":"Go"}],"pagination":{"total":9}}`,
			opts:      Options{Limit: 4},
			wantItems: []item{a},
			wantPg:    Pagination{Total: 9, Page: 1, Limit: 4, TotalPages: 3},
			wantShape: ShapeTopLevel,
		},
		{
			name:      "total below the items received",
			raw:       `{"items":[{"_id":"1","title":"Go"},{"_id":"2","title":"Rust"},{"_id":"3","title":"Zig"}],"pagination":{"page":1,"limit":3}}`,
			wantItems: []item{a, b, c},
			wantPg:    Pagination{Total: 3, Page: 1, Limit: 3, TotalPages: 1},
			wantShape: ShapeTopLevel,
		},
		{
			name:      "more items than the limit",
			raw:       `{"data":{"courses":[{"_id":"1","title":"Go"},{"_id":"2","title":"Rust"},{"_id":"3","title":"Zig"}],"pagination":{"total":3,"page":1,"limit":2}}}`,
			opts:      courseOpts,
			wantItems: []item{a, b, c},
			wantPg:    Pagination{Total: 3, Page: 1, Limit: 3, TotalPages: 1},
			wantShape: ShapeNested,
		},
		{
			name:      "later page implies earlier items",
			raw:       `{"data":[{"_id":"3","title":"Zig"}],"meta":{"total":1,"page":3,"limit":2}}`,
			wantItems: []item{c},
			wantPg:    Pagination{Total: 5, Page: 3, Limit: 2, TotalPages: 3},
			wantShape: ShapeDataArray,
		},
		{
			name:      "empty page past the end keeps the total",
			raw:       `{"data":[],"meta":{"total":4,"page":9,"limit":2}}`,
			wantItems: []item{},
			wantPg:    Pagination{Total: 4, Page: 9, Limit: 2, TotalPages: 2},
			wantShape: ShapeDataArray,
		},
		{
			name:     "unexpected shape",
			raw:      `{"unexpected":"shape"}`,
			wantPg:   Pagination{Total: 0, Page: 1, Limit: 1, TotalPages: 1},
			wantKind: KindUnrecognizedShape,
		},
		{
			name:     "unexpected shape keeps requested limit",
			raw:      `{"unexpected":"shape"}`,
			opts:     Options{Limit: 8},
			wantPg:   Pagination{Total: 0, Page: 1, Limit: 8, TotalPages: 1},
			wantKind: KindUnrecognizedShape,
		},
		{
			name:     "single data object is not a list by default",
			raw:      `{"data":{"_id":"2","title":"Rust"}}`,
			wantPg:   Pagination{Total: 0, Page: 1, Limit: 1, TotalPages: 1},
			wantKind: KindUnrecognizedShape,
		},
		{
			name:     "domain key unknown to the options",
			raw:      `{"data":{"courses":[],"pagination":{"total":0,"page":1,"limit":8,"totalPages":1}}}`,
			wantPg:   Pagination{Total: 0, Page: 1, Limit: 1, TotalPages: 1},
			wantKind: KindUnrecognizedShape,
		},
		{name: "empty body", raw: ``, wantPg: Pagination{Page: 1, Limit: 1, TotalPages: 1}, wantKind: KindEmpty},
		{name: "null", raw: `null`, wantPg: Pagination{Page: 1, Limit: 1, TotalPages: 1}, wantKind: KindEmpty},
		{name: "html", raw: `<html>502</html>`, wantPg: Pagination{Page: 1, Limit: 1, TotalPages: 1}, wantKind: KindNotJSON},
		{name: "scalar", raw: `"courses"`, wantPg: Pagination{Page: 1, Limit: 1, TotalPages: 1}, wantKind: KindUnrecognizedShape},
		{
			name:      "undecodable items",
			raw:       `[1, 2, 3]`,
			wantPg:    Pagination{Page: 1, Limit: 1, TotalPages: 1},
			wantShape: ShapeBareArray,
			wantKind:  KindUndecodableItems,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, shape, err := Match[item]([]byte(tt.raw), tt.opts)

			assert.Equal(t, tt.wantShape, shape)
			assert.Equal(t, tt.wantPg, got.Pagination)
			if tt.wantKind != "" {
				var merr *MalformedError
				require.True(t, errors.As(err, &merr), "want *MalformedError, got %v", err)
				assert.Equal(t, tt.wantKind, merr.Kind)
				assert.NotNil(t, got.Items)
				assert.Empty(t, got.Items)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantItems, got.Items)
			assert.LessOrEqual(t, len(got.Items), got.Pagination.Limit)
			assert.GreaterOrEqual(t, got.Pagination.Total, len(got.Items))
		})
	}
}

func TestNormalize_idempotent(t *testing.T) {
	raws := []string{
		`{"data":{"courses":[{"_id":"1","title":"Go"},{"_id":"2","title":"Rust"}],"pagination":{"total":10,"page":3,"limit":2,"totalPages":5}}}`,
		`[{"_id":"1","title":"Go"}]`,
		`{"data":[],"meta":{"total":0}}`,
		`{"unexpected":"shape"}`,
	}
	for _, raw := range raws {
		first, _ := Normalize[item]([]byte(raw), courseOpts)

		canonical, err := json.Marshal(first)
		require.NoError(t, err)

		second, err := Normalize[item](canonical, courseOpts)
		require.NoError(t, err)
		assert.Equal(t, first, second, raw)
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 1, TotalPages(0, 8))
	assert.Equal(t, 1, TotalPages(8, 8))
	assert.Equal(t, 2, TotalPages(9, 8))
	assert.Equal(t, 1, TotalPages(9, 0))
	assert.Equal(t, 4, TotalPages(10, 3))
}

func TestShape_String(t *testing.T) {
	assert.Equal(t, "nested", ShapeNested.String())
	assert.Equal(t, "bare_array", ShapeBareArray.String())
}

func TestIsMalformed(t *testing.T) {
	_, err := Normalize[item]([]byte(`{"unexpected":"shape"}`), courseOpts)
	assert.True(t, IsMalformed(err))
	assert.True(t, IsMalformed(fmt.Errorf("querying courses: %w", err)))
	assert.False(t, IsMalformed(errors.New("boom")))
	assert.False(t, IsMalformed(nil))
}
