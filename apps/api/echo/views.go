package echoapi

import (
	"github.com/trezcool/masomo-storefront/core/course"
	"github.com/trezcool/masomo-storefront/core/enrollment"
	"github.com/trezcool/masomo-storefront/core/listing"
	"github.com/trezcool/masomo-storefront/core/paging"
)

type (
	// EmptyState is the message shown in place of an empty list.
	EmptyState struct {
		Title string `json:"title"`
		Hint  string `json:"hint"`
	}

	// CatalogView is a render-ready page of courses.
	CatalogView struct {
		Items      []course.Course    `json:"items"`
		Pagination listing.Pagination `json:"pagination"`
		// Controls is null when everything fits on one page.
		Controls     *paging.Controls `json:"controls"`
		Limit        int              `json:"limit"`
		LimitChoices []int            `json:"limit_choices,omitempty"`
		Showing      string           `json:"showing"`
		PageSummary  string           `json:"page_summary,omitempty"`
		Empty        *EmptyState      `json:"empty,omitempty"`
		// Degraded is set when the backend answered with an unreadable list.
		Degraded bool `json:"degraded,omitempty"`
	}

	CourseDetail struct {
		course.Course
		TotalDuration int    `json:"total_duration"` // minutes
		Duration      string `json:"duration"`
	}

	DashboardView struct {
		Stats             enrollment.Stats        `json:"stats"`
		RecentEnrollments []enrollment.Enrollment `json:"recent_enrollments"`
		NewestCourses     []course.Course         `json:"newest_courses"`
		Degraded          bool                    `json:"degraded,omitempty"`
	}

	MyCoursesView struct {
		Items  []enrollment.Enrollment `json:"items"`
		Search string                  `json:"search,omitempty"`
		Status string                  `json:"status"`
		// Counts holds the number of enrollments per status filter, search included.
		Counts   map[string]int `json:"counts"`
		Empty    *EmptyState    `json:"empty,omitempty"`
		Degraded bool           `json:"degraded,omitempty"`
	}
)

// degradedList tells a malformed list answer, rendered as an empty degraded view, from real failures.
func degradedList(err error) (bool, error) {
	if err == nil {
		return false, nil
	}
	if listing.IsMalformed(err) {
		return true, nil
	}
	return false, err
}

func newCatalogView(page listing.Response[course.Course], maxVisible int, searching bool) CatalogView {
	pg := page.Pagination
	view := CatalogView{
		Items:       page.Items,
		Pagination:  pg,
		Controls:    paging.NewControls(pg.Page, pg.TotalPages, maxVisible),
		Limit:       pg.Limit,
		Showing:     course.Showing(page),
		PageSummary: course.PageSummary(pg),
	}
	if len(page.Items) == 0 {
		if searching {
			view.Empty = &EmptyState{Title: "No courses found", Hint: "Try adjusting your search terms"}
		} else {
			view.Empty = &EmptyState{Title: "No courses available", Hint: "Check back soon for new courses!"}
		}
	}
	return view
}

// setDegraded replaces the empty state of a view built from an unreadable list.
func (v *CatalogView) setDegraded(degraded bool) {
	if !degraded {
		return
	}
	v.Degraded = true
	v.Empty = &EmptyState{Title: "Courses could not be loaded", Hint: "Please try again later"}
}

func newCourseDetail(crs course.Course) CourseDetail {
	crs.Modules = crs.SortedModules()
	total := crs.TotalDuration()
	return CourseDetail{Course: crs, TotalDuration: total, Duration: course.FormatDuration(total)}
}

// recentCount is the number of enrollments shown on the dashboard.
const recentCount = 3

func newDashboardView(enrs []enrollment.Enrollment, newest []course.Course) DashboardView {
	recent := enrs
	if len(recent) > recentCount {
		recent = recent[:recentCount]
	}
	return DashboardView{
		Stats:             enrollment.ComputeStats(enrs),
		RecentEnrollments: recent,
		NewestCourses:     newest,
	}
}

func newMyCoursesView(enrs []enrollment.Enrollment, search, status string) MyCoursesView {
	switch status {
	case enrollment.FilterInProgress, enrollment.FilterCompleted:
	default:
		status = enrollment.FilterAll
	}
	view := MyCoursesView{
		Items:  enrollment.Filter(enrs, search, status),
		Search: search,
		Status: status,
		Counts: map[string]int{
			enrollment.FilterAll:        len(enrollment.Filter(enrs, search, enrollment.FilterAll)),
			enrollment.FilterInProgress: len(enrollment.Filter(enrs, search, enrollment.FilterInProgress)),
			enrollment.FilterCompleted:  len(enrollment.Filter(enrs, search, enrollment.FilterCompleted)),
		},
	}
	if len(view.Items) == 0 {
		if search != "" || status != enrollment.FilterAll {
			view.Empty = &EmptyState{Title: "No courses found", Hint: "Try adjusting your search terms or browse available courses"}
		} else {
			view.Empty = &EmptyState{Title: "No courses enrolled yet", Hint: "Start your learning journey by enrolling in a course"}
		}
	}
	return view
}
