package course

import (
	"context"
	"errors"

	"github.com/trezcool/masomo-storefront/core/listing"
)

var (
	// errors
	ErrNotFound  = errors.New("course not found")
	ErrNoChanges = errors.New("nothing to update")
)

type (
	// Repository is implemented by the course backend.
	// Calls are made on behalf of the session (empty for anonymous visitors).
	Repository interface {
		QueryCourses(ctx context.Context, session string, filter QueryFilter) (listing.Response[Course], error)
		GetCourseByID(ctx context.Context, session, id string) (Course, error)
		CreateCourse(ctx context.Context, session string, nc NewCourse) (Course, error)
		UpdateCourse(ctx context.Context, session, id string, uc UpdateCourse) (Course, error)
		DeleteCourse(ctx context.Context, session, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Query returns a page of the catalog.
// A malformed backend payload still yields a usable empty page along with the *listing.MalformedError.
func (svc *Service) Query(ctx context.Context, session string, filter QueryFilter) (listing.Response[Course], error) {
	return svc.repo.QueryCourses(ctx, session, filter)
}

// Newest returns up to n of the most recently created courses, with the same error semantics as Query.
func (svc *Service) Newest(ctx context.Context, session string, n int) (listing.Response[Course], error) {
	return svc.repo.QueryCourses(ctx, session, QueryFilter{
		Page:      1,
		Limit:     n,
		SortBy:    SortByCreatedAt,
		SortOrder: SortDesc,
	})
}

func (svc *Service) GetByID(ctx context.Context, session, id string) (Course, error) {
	return svc.repo.GetCourseByID(ctx, session, id)
}

func (svc *Service) Create(ctx context.Context, session string, nc NewCourse) (Course, error) {
	return svc.repo.CreateCourse(ctx, session, nc)
}

func (svc *Service) Update(ctx context.Context, session, id string, uc UpdateCourse) (Course, error) {
	if uc.IsEmpty() {
		return Course{}, ErrNoChanges
	}
	return svc.repo.UpdateCourse(ctx, session, id, uc)
}

func (svc *Service) Delete(ctx context.Context, session, id string) error {
	return svc.repo.DeleteCourse(ctx, session, id)
}
