package enrollment

import (
	"regexp"

	"github.com/trezcool/masomo-storefront/core/course"
)

const youtubeEmbedURL = "https://www.youtube.com/embed/"

var (
	youtubeVideoRe = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/|youtube\.com/v/)([a-zA-Z0-9_-]{11})`)
	youtubeShortRe = regexp.MustCompile(`youtube\.com/shorts/([a-zA-Z0-9_-]{11})`)
)

// EmbedVideoURL returns the embeddable player URL of a YouTube link.
// Other links are returned unchanged.
func EmbedVideoURL(videoURL string) string {
	for _, re := range []*regexp.Regexp{youtubeVideoRe, youtubeShortRe} {
		if m := re.FindStringSubmatch(videoURL); m != nil {
			return youtubeEmbedURL + m[1]
		}
	}
	return videoURL
}

// ModuleItem is a module in the course outline.
type ModuleItem struct {
	course.Module
	EmbedURL  string `json:"embed_url,omitempty"`
	Completed bool   `json:"completed"`
}

// Contents is the learner's view of an enrolled course.
type Contents struct {
	EnrollmentID  string       `json:"enrollment_id"`
	CourseID      string       `json:"course_id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Progress      float64      `json:"progress"`
	Modules       []ModuleItem `json:"modules"`
	Selected      *ModuleItem  `json:"selected,omitempty"`
	PrevModuleID  string       `json:"prev_module_id,omitempty"`
	NextModuleID  string       `json:"next_module_id,omitempty"`
	TotalDuration int          `json:"total_duration"` // minutes
	Duration      string       `json:"duration"`
}

// NewContents builds the outline of crs for enr, with modules sorted by order.
// The selected module defaults to the first one when selectedID is empty or unknown.
func NewContents(enr Enrollment, crs course.Course, selectedID string) Contents {
	sorted := crs.SortedModules()
	cnt := Contents{
		EnrollmentID:  enr.ID,
		CourseID:      crs.ID,
		Title:         crs.Title,
		Description:   crs.Description,
		Progress:      enr.Progress,
		Modules:       make([]ModuleItem, 0, len(sorted)),
		TotalDuration: crs.TotalDuration(),
	}
	cnt.Duration = course.FormatDuration(cnt.TotalDuration)

	selected := -1
	for i, m := range sorted {
		item := ModuleItem{Module: m, Completed: enr.HasCompleted(m.ID)}
		if m.VideoURL != "" {
			item.EmbedURL = EmbedVideoURL(m.VideoURL)
		}
		cnt.Modules = append(cnt.Modules, item)
		if m.ID == selectedID && selected < 0 {
			selected = i
		}
	}
	if len(cnt.Modules) == 0 {
		return cnt
	}
	if selected < 0 {
		selected = 0
	}

	cnt.Selected = &cnt.Modules[selected]
	// the selected module's texts replace the course's when set
	if cnt.Selected.Title != "" {
		cnt.Title = cnt.Selected.Title
	}
	if cnt.Selected.Description != "" {
		cnt.Description = cnt.Selected.Description
	}
	if selected > 0 {
		cnt.PrevModuleID = cnt.Modules[selected-1].ID
	}
	if selected < len(cnt.Modules)-1 {
		cnt.NextModuleID = cnt.Modules[selected+1].ID
	}
	return cnt
}
