package enrollment

import (
	"context"
	"errors"

	"github.com/trezcool/masomo-storefront/core/course"
	"github.com/trezcool/masomo-storefront/core/listing"
)

var (
	// errors
	ErrNotFound        = errors.New("enrollment not found")
	ErrAlreadyEnrolled = errors.New("already enrolled in this course")
	ErrBatchRequired   = errors.New("please select a batch to enroll in")
	ErrUnknownBatch    = errors.New("this batch does not belong to the course")
)

type (
	// Repository is implemented by the course backend.
	// Calls are made on behalf of the learner's session.
	Repository interface {
		Enroll(ctx context.Context, session, courseID, batchID string) (Enrollment, error)
		QueryMyEnrollments(ctx context.Context, session string) (listing.Response[Enrollment], error)
		GetEnrollmentProgress(ctx context.Context, session, id string) (Enrollment, error)
		CompleteModule(ctx context.Context, session, enrollmentID, moduleID string) (Enrollment, error)
		Unenroll(ctx context.Context, session, id string) error
		CheckEnrollment(ctx context.Context, session, courseID string) (CheckResult, error)
	}

	Service struct {
		repo    Repository
		courses course.Repository
	}
)

func NewService(repo Repository, courses course.Repository) *Service {
	return &Service{repo: repo, courses: courses}
}

// Enroll enrolls the learner in a batch of the course.
// When batchID is empty, the course's only batch is picked; a course with several batches needs a choice.
func (svc *Service) Enroll(ctx context.Context, session, courseID, batchID string) (Enrollment, error) {
	crs, err := svc.courses.GetCourseByID(ctx, session, courseID)
	if err != nil {
		return Enrollment{}, err
	}
	if batchID == "" {
		b, ok := crs.DefaultBatch()
		if !ok {
			return Enrollment{}, ErrBatchRequired
		}
		batchID = b.BatchID
	} else if !crs.HasBatch(batchID) {
		return Enrollment{}, ErrUnknownBatch
	}
	return svc.repo.Enroll(ctx, session, crs.ID, batchID)
}

// Mine returns the learner's enrollments.
// A malformed backend payload yields an empty list along with the *listing.MalformedError.
func (svc *Service) Mine(ctx context.Context, session string) (listing.Response[Enrollment], error) {
	return svc.repo.QueryMyEnrollments(ctx, session)
}

func (svc *Service) Get(ctx context.Context, session, id string) (Enrollment, error) {
	return svc.repo.GetEnrollmentProgress(ctx, session, id)
}

// Contents returns the outline of an enrolled course, fetching the course when the backend did not populate it.
func (svc *Service) Contents(ctx context.Context, session, id, selectedModuleID string) (Contents, error) {
	enr, err := svc.repo.GetEnrollmentProgress(ctx, session, id)
	if err != nil {
		return Contents{}, err
	}
	var crs course.Course
	if enr.Course != nil && len(enr.Course.Modules) > 0 {
		crs = *enr.Course
	} else {
		if crs, err = svc.courses.GetCourseByID(ctx, session, enr.CourseID); err != nil {
			return Contents{}, err
		}
	}
	return NewContents(enr, crs, selectedModuleID), nil
}

func (svc *Service) CompleteModule(ctx context.Context, session, id, moduleID string) (Enrollment, error) {
	return svc.repo.CompleteModule(ctx, session, id, moduleID)
}

func (svc *Service) Unenroll(ctx context.Context, session, id string) error {
	return svc.repo.Unenroll(ctx, session, id)
}

func (svc *Service) Check(ctx context.Context, session, courseID string) (CheckResult, error) {
	return svc.repo.CheckEnrollment(ctx, session, courseID)
}
