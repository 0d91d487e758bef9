package enrollment

import (
	"math"
	"strings"
	"time"

	"github.com/trezcool/masomo-storefront/core"
	"github.com/trezcool/masomo-storefront/core/course"
)

// Statuses
const (
	StatusNotStarted = "not_started"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Progress bands
const (
	BandLow    = "low"
	BandMedium = "medium"
	BandHigh   = "high"
)

// Filters of the learner's course list
const (
	FilterAll        = "all"
	FilterInProgress = "in-progress"
	FilterCompleted  = "completed"
)

// untitled is shown when the enrollment's course was not populated by the backend.
const untitled = "Course"

type Enrollment struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	CourseID string `json:"course_id"`
	// Course is only set when the backend populated it.
	Course           *course.Course `json:"course,omitempty"`
	BatchID          string         `json:"batch_id"`
	Progress         float64        `json:"progress"` // percent
	CompletedModules []string       `json:"completed_modules"`
	IsDeleted        bool           `json:"is_deleted"`
	EnrolledAt       time.Time      `json:"enrolled_at"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

func (e Enrollment) Title() string {
	if e.Course != nil && e.Course.Title != "" {
		return e.Course.Title
	}
	return untitled
}

func (e Enrollment) Status() string {
	switch {
	case e.Progress >= 100:
		return StatusCompleted
	case e.Progress > 0:
		return StatusInProgress
	default:
		return StatusNotStarted
	}
}

func (e Enrollment) ProgressBand() string {
	switch {
	case e.Progress >= 80:
		return BandHigh
	case e.Progress >= 50:
		return BandMedium
	default:
		return BandLow
	}
}

func (e Enrollment) HasCompleted(moduleID string) bool {
	for _, id := range e.CompletedModules {
		if id == moduleID {
			return true
		}
	}
	return false
}

// CheckResult tells whether the current user is enrolled in a course.
type CheckResult struct {
	IsEnrolled   bool   `json:"is_enrolled"`
	EnrollmentID string `json:"enrollment_id,omitempty"`
}

// Stats summarizes the learner's enrollments for the dashboard.
type Stats struct {
	EnrolledCourses  int `json:"enrolled_courses"`
	CompletedModules int `json:"completed_modules"`
	AverageProgress  int `json:"average_progress"` // rounded percent
	InProgress       int `json:"in_progress"`
	Completed        int `json:"completed"`
}

func ComputeStats(enrs []Enrollment) Stats {
	var (
		stats = Stats{EnrolledCourses: len(enrs)}
		sum   float64
	)
	for _, e := range enrs {
		stats.CompletedModules += len(e.CompletedModules)
		sum += e.Progress
		switch {
		case e.Progress == 100:
			stats.Completed++
		case e.Progress > 0 && e.Progress < 100:
			stats.InProgress++
		}
	}
	if len(enrs) > 0 {
		stats.AverageProgress = int(math.Round(sum / float64(len(enrs))))
	}
	return stats
}

// Filter returns the enrollments whose course title contains search (case-insensitive)
// and that match status (one of FilterAll, FilterInProgress, FilterCompleted).
// Unknown statuses behave like FilterAll.
func Filter(enrs []Enrollment, search, status string) []Enrollment {
	search = core.CleanString(search, true /* lower */)
	filtered := make([]Enrollment, 0, len(enrs))
	for _, e := range enrs {
		if search != "" && !strings.Contains(strings.ToLower(e.Title()), search) {
			continue
		}
		switch status {
		case FilterInProgress:
			if e.Progress >= 100 {
				continue
			}
		case FilterCompleted:
			if e.Progress != 100 {
				continue
			}
		}
		filtered = append(filtered, e)
	}
	return filtered
}
