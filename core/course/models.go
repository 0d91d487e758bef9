package course

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo-storefront/core"
)

// Sort fields & orders accepted by the backend
const (
	SortByPrice     = "price"
	SortByCreatedAt = "createdAt"
	SortByTitle     = "title"

	SortAsc  = "asc"
	SortDesc = "desc"
)

// LimitChoices are the page sizes offered by the catalog.
var LimitChoices = []int{4, 8, 12, 16}

// Module is a lesson of a Course.
type Module struct {
	ID          string `json:"id"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	VideoURL    string `json:"video_url" validate:"omitempty,url"`
	Duration    int    `json:"duration" validate:"min=1"` // minutes
	Order       int    `json:"order" validate:"min=1"`
}

// Batch is a session of a Course learners enroll into.
type Batch struct {
	BatchID     string `json:"batch_id" validate:"required"`
	StartDate   string `json:"start_date" validate:"required,date"` // YYYY-MM-DD
	EndDate     string `json:"end_date,omitempty" validate:"omitempty,date"`
	MaxStudents int    `json:"max_students,omitempty" validate:"omitempty,min=1"`
}

type Course struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Instructor  string    `json:"instructor"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	Modules     []Module  `json:"modules"`
	Batches     []Batch   `json:"batches"`
	IsDeleted   bool      `json:"is_deleted"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// TotalDuration returns the sum of the modules durations, in minutes.
func (c Course) TotalDuration() int {
	var total int
	for _, m := range c.Modules {
		total += m.Duration
	}
	return total
}

// SortedModules returns a copy of the modules ordered by Module.Order.
func (c Course) SortedModules() []Module {
	mods := make([]Module, len(c.Modules))
	copy(mods, c.Modules)
	sort.SliceStable(mods, func(i, j int) bool { return mods[i].Order < mods[j].Order })
	return mods
}

// DefaultBatch returns the only batch of the course, if it has exactly one.
func (c Course) DefaultBatch() (Batch, bool) {
	if len(c.Batches) == 1 {
		return c.Batches[0], true
	}
	return Batch{}, false
}

func (c Course) HasBatch(batchID string) bool {
	for _, b := range c.Batches {
		if b.BatchID == batchID {
			return true
		}
	}
	return false
}

// FormatDuration formats minutes as "0 min", "45 min" or "1h 30m".
func FormatDuration(minutes int) string {
	if minutes <= 0 {
		return "0 min"
	}
	hours, mins := minutes/60, minutes%60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	return fmt.Sprintf("%d min", mins)
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Title       string   `json:"title" validate:"min=3"`
	Description string   `json:"description" validate:"min=10"`
	Instructor  string   `json:"instructor" validate:"min=2"`
	Price       float64  `json:"price" validate:"gte=0"`
	Category    string   `json:"category" validate:"required"`
	Tags        []string `json:"tags"`
	Thumbnail   string   `json:"thumbnail" validate:"omitempty,url"`
	Modules     []Module `json:"modules" validate:"dive"`
	Batches     []Batch  `json:"batches" validate:"min=1,dive"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	nc.Instructor = core.CleanString(nc.Instructor)
	nc.Category = core.CleanString(nc.Category)
	nc.Thumbnail = core.CleanString(nc.Thumbnail)
	nc.Tags = CleanTags(nc.Tags)
	cleanModules(nc.Modules)
	cleanBatches(nc.Batches)
	return validate.Struct(nc)
}

// UpdateCourse defines what information may be provided to modify an existing Course.
// Unset fields are left untouched by the backend.
type UpdateCourse struct {
	Title       string   `json:"title" validate:"omitempty,min=3"`
	Description string   `json:"description" validate:"omitempty,min=10"`
	Instructor  string   `json:"instructor" validate:"omitempty,min=2"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Thumbnail   string   `json:"thumbnail" validate:"omitempty,url"`
	Modules     []Module `json:"modules" validate:"omitempty,dive"`
	Batches     []Batch  `json:"batches" validate:"omitempty,dive"`
}

func (uc *UpdateCourse) Validate(validate *validator.Validate) error {
	uc.Title = core.CleanString(uc.Title)
	uc.Description = core.CleanString(uc.Description)
	uc.Instructor = core.CleanString(uc.Instructor)
	uc.Category = core.CleanString(uc.Category)
	uc.Thumbnail = core.CleanString(uc.Thumbnail)
	if uc.Tags != nil {
		uc.Tags = CleanTags(uc.Tags)
	}
	cleanModules(uc.Modules)
	cleanBatches(uc.Batches)
	return validate.Struct(uc)
}

// IsEmpty reports whether there is nothing to update.
func (uc *UpdateCourse) IsEmpty() bool {
	return uc.Title == "" && uc.Description == "" && uc.Instructor == "" && uc.Price == nil &&
		uc.Category == "" && uc.Tags == nil && uc.Thumbnail == "" && uc.Modules == nil && uc.Batches == nil
}

// CleanTags trims tags, dropping blank and duplicated ones.
func CleanTags(tags []string) []string {
	cleaned := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = core.CleanString(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		cleaned = append(cleaned, tag)
	}
	return cleaned
}

// cleanModules trims the modules' texts and renumbers their order 1..n, keeping their relative order.
func cleanModules(mods []Module) {
	sort.SliceStable(mods, func(i, j int) bool { return mods[i].Order < mods[j].Order })
	for i := range mods {
		mods[i].Title = core.CleanString(mods[i].Title)
		mods[i].Description = core.CleanString(mods[i].Description)
		mods[i].VideoURL = core.CleanString(mods[i].VideoURL)
		mods[i].Order = i + 1
	}
}

func cleanBatches(batches []Batch) {
	for i := range batches {
		batches[i].BatchID = core.CleanString(batches[i].BatchID)
		batches[i].StartDate = core.CleanString(batches[i].StartDate)
		batches[i].EndDate = core.CleanString(batches[i].EndDate)
	}
}

// QueryFilter holds the catalog query parameters.
type QueryFilter struct {
	Page      int      `query:"page" validate:"omitempty,min=1"`
	Limit     int      `query:"limit" validate:"omitempty,min=1,max=100"`
	Search    string   `query:"search"`
	Category  string   `query:"category"`
	MinPrice  *float64 `query:"min_price" validate:"omitempty,gte=0"`
	MaxPrice  *float64 `query:"max_price" validate:"omitempty,gte=0"`
	SortBy    string   `query:"sort_by" validate:"omitempty,oneof=price createdAt title"`
	SortOrder string   `query:"sort_order" validate:"omitempty,oneof=asc desc"`
	Tags      []string `query:"tags"`
}

// Clean trims the filter and fills the page defaults.
func (qf *QueryFilter) Clean(defaultLimit int) {
	qf.Search = core.CleanString(qf.Search)
	qf.Category = core.CleanString(qf.Category)
	qf.SortOrder = core.CleanString(qf.SortOrder, true /* lower */)
	qf.Tags = CleanTags(qf.Tags)
	if qf.Page < 1 {
		qf.Page = 1
	}
	if qf.Limit < 1 {
		qf.Limit = defaultLimit
	}
}

func (qf *QueryFilter) Validate(validate *validator.Validate) error {
	if err := validate.Struct(qf); err != nil {
		return err
	}
	if qf.MinPrice != nil && qf.MaxPrice != nil && *qf.MinPrice > *qf.MaxPrice {
		return core.NewValidationError(nil, core.FieldError{Field: "max_price", Error: "must be greater than or equal to min_price"})
	}
	return nil
}

// Params returns the backend query parameters; unset values are left out.
func (qf QueryFilter) Params() map[string]string {
	params := make(map[string]string)
	if qf.Page > 0 {
		params["page"] = strconv.Itoa(qf.Page)
	}
	if qf.Limit > 0 {
		params["limit"] = strconv.Itoa(qf.Limit)
	}
	if qf.Search != "" {
		params["search"] = qf.Search
	}
	if qf.Category != "" {
		params["category"] = qf.Category
	}
	if qf.MinPrice != nil && *qf.MinPrice > 0 {
		params["minPrice"] = strconv.FormatFloat(*qf.MinPrice, 'f', -1, 64)
	}
	if qf.MaxPrice != nil && *qf.MaxPrice > 0 {
		params["maxPrice"] = strconv.FormatFloat(*qf.MaxPrice, 'f', -1, 64)
	}
	if qf.SortBy != "" {
		params["sortBy"] = qf.SortBy
	}
	if qf.SortOrder != "" {
		params["sortOrder"] = qf.SortOrder
	}
	if len(qf.Tags) > 0 {
		params["tags"] = strings.Join(qf.Tags, ",")
	}
	return params
}
