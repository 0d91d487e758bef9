package backendsvc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/masomo-storefront/core/enrollment"
	"github.com/trezcool/masomo-storefront/core/listing"
)

var enrollmentListOpts = listing.Options{Keys: []string{"enrollments"}, AllowSingle: true}

// ref is a reference the backend sends either as an id or as the populated object.
type ref struct {
	ID     string
	Object json.RawMessage // nil when not populated
}

func (r *ref) UnmarshalJSON(b []byte) error {
	if isJSONObject(b) {
		var i ids
		_ = json.Unmarshal(b, &i)
		r.ID, r.Object = i.get(), append(json.RawMessage(nil), b...)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		r.ID = s
	}
	return nil
}

type wireEnrollment struct {
	ids
	UserID           ref       `json:"userId"`
	CourseID         ref       `json:"courseId"`
	BatchID          string    `json:"batchId"`
	Progress         number    `json:"progress"`
	CompletedModules []string  `json:"completedModules"`
	IsDeleted        bool      `json:"isDeleted"`
	EnrolledAt       timestamp `json:"enrolledAt"`
	CreatedAt        timestamp `json:"createdAt"`
	UpdatedAt        timestamp `json:"updatedAt"`
}

type enrollmentRepository struct {
	cl      *Client
	courses courseRepository
}

var _ enrollment.Repository = (*enrollmentRepository)(nil)

func NewEnrollmentRepository(cl *Client) enrollment.Repository {
	return &enrollmentRepository{cl: cl, courses: courseRepository{cl: cl}}
}

func (repo enrollmentRepository) unwire(we wireEnrollment) enrollment.Enrollment {
	completed := we.CompletedModules
	if completed == nil {
		completed = []string{}
	}
	enr := enrollment.Enrollment{
		ID:               we.get(),
		UserID:           we.UserID.ID,
		CourseID:         we.CourseID.ID,
		BatchID:          we.BatchID,
		Progress:         float64(we.Progress),
		CompletedModules: completed,
		IsDeleted:        we.IsDeleted,
		EnrolledAt:       we.EnrolledAt.Time(),
		CreatedAt:        we.CreatedAt.Time(),
		UpdatedAt:        we.UpdatedAt.Time(),
	}
	if we.CourseID.Object != nil {
		var wc wireCourse
		if err := json.Unmarshal(we.CourseID.Object, &wc); err == nil {
			crs := repo.courses.unwire(wc)
			enr.Course = &crs
		}
	}
	return enr
}

func (repo enrollmentRepository) unwireSlice(wes []wireEnrollment) []enrollment.Enrollment {
	enrs := make([]enrollment.Enrollment, 0, len(wes))
	for _, we := range wes {
		enrs = append(enrs, repo.unwire(we))
	}
	return enrs
}

// mapErr translates the backend's enrollment errors.
func (repo enrollmentRepository) mapErr(err error) error {
	var berr *Error
	if !errors.As(err, &berr) {
		return err
	}
	switch {
	case berr.StatusCode == http.StatusNotFound:
		return enrollment.ErrNotFound
	case (berr.StatusCode == http.StatusBadRequest || berr.StatusCode == http.StatusConflict) &&
		strings.Contains(strings.ToLower(berr.Message), "already enrolled"):
		return enrollment.ErrAlreadyEnrolled
	}
	return err
}

func (repo enrollmentRepository) mutate(ctx context.Context, c call) (enrollment.Enrollment, error) {
	resp, err := repo.cl.do(ctx, c)
	if err != nil {
		return enrollment.Enrollment{}, repo.mapErr(err)
	}
	repo.cl.cache.invalidate(c.session, tagEnrollments)

	if c.method == rest.Delete || resp.StatusCode == http.StatusNoContent {
		return enrollment.Enrollment{}, nil
	}
	var we wireEnrollment
	if err := decodeData(resp, &we); err != nil {
		return enrollment.Enrollment{}, errors.Wrap(err, "decoding enrollment")
	}
	return repo.unwire(we), nil
}

func (repo enrollmentRepository) Enroll(ctx context.Context, session, courseID, batchID string) (enrollment.Enrollment, error) {
	return repo.mutate(ctx, call{
		method:   rest.Post,
		path:     "/courses/enroll",
		endpoint: "/courses/enroll",
		session:  session,
		body:     map[string]string{"courseId": courseID, "batchId": batchID},
	})
}

func (repo enrollmentRepository) QueryMyEnrollments(ctx context.Context, session string) (listing.Response[enrollment.Enrollment], error) {
	resp, err := repo.cl.get(ctx, tagEnrollments, call{
		path:     "/courses/enroll/my-enrollments",
		endpoint: "/courses/enroll/my-enrollments",
		session:  session,
	})
	if err != nil {
		return listing.Empty[enrollment.Enrollment](0), err
	}
	page, err := normalize[wireEnrollment](repo.cl, "/courses/enroll/my-enrollments", resp, enrollmentListOpts)
	return listing.Response[enrollment.Enrollment]{Items: repo.unwireSlice(page.Items), Pagination: page.Pagination}, err
}

func (repo enrollmentRepository) GetEnrollmentProgress(ctx context.Context, session, id string) (enrollment.Enrollment, error) {
	resp, err := repo.cl.get(ctx, tagEnrollments, call{
		path:     "/courses/enroll/progress/" + url.PathEscape(id),
		endpoint: "/courses/enroll/progress/:id",
		session:  session,
	})
	if err != nil {
		return enrollment.Enrollment{}, repo.mapErr(err)
	}
	var we wireEnrollment
	if err := decodeData(resp, &we); err != nil {
		return enrollment.Enrollment{}, err
	}
	if we.get() == "" {
		return enrollment.Enrollment{}, enrollment.ErrNotFound
	}
	return repo.unwire(we), nil
}

func (repo enrollmentRepository) CompleteModule(ctx context.Context, session, enrollmentID, moduleID string) (enrollment.Enrollment, error) {
	return repo.mutate(ctx, call{
		method:   rest.Post,
		path:     "/courses/enroll/complete-module",
		endpoint: "/courses/enroll/complete-module",
		session:  session,
		body:     map[string]string{"enrollmentId": enrollmentID, "moduleId": moduleID},
	})
}

func (repo enrollmentRepository) Unenroll(ctx context.Context, session, id string) error {
	_, err := repo.mutate(ctx, call{
		method:   rest.Delete,
		path:     "/courses/enroll/unenroll/" + url.PathEscape(id),
		endpoint: "/courses/enroll/unenroll/:id",
		session:  session,
	})
	return err
}

type wireCheck struct {
	IsEnrolled   *bool           `json:"isEnrolled"`
	EnrollmentID string          `json:"enrollmentId"`
	Data         json.RawMessage `json:"data"`
}

func (repo enrollmentRepository) CheckEnrollment(ctx context.Context, session, courseID string) (enrollment.CheckResult, error) {
	resp, err := repo.cl.get(ctx, tagEnrollments, call{
		path:     "/courses/enroll/check/" + url.PathEscape(courseID),
		endpoint: "/courses/enroll/check/:courseId",
		session:  session,
	})
	if err != nil {
		if StatusCode(err) == http.StatusNotFound {
			return enrollment.CheckResult{}, nil
		}
		return enrollment.CheckResult{}, err
	}

	var wc wireCheck
	if err := json.Unmarshal([]byte(resp.Body), &wc); err != nil {
		return enrollment.CheckResult{}, errors.Wrap(err, "decoding enrollment check")
	}
	// the answer may also be nested in data
	var nested wireCheck
	if isJSONObject(wc.Data) && json.Unmarshal(wc.Data, &nested) == nil {
		if wc.IsEnrolled == nil {
			wc.IsEnrolled = nested.IsEnrolled
		}
		if wc.EnrollmentID == "" {
			wc.EnrollmentID = nested.EnrollmentID
		}
		if wc.EnrollmentID == "" {
			var i ids
			_ = json.Unmarshal(wc.Data, &i)
			wc.EnrollmentID = i.get()
		}
	}

	res := enrollment.CheckResult{EnrollmentID: wc.EnrollmentID}
	if wc.IsEnrolled != nil {
		res.IsEnrolled = *wc.IsEnrolled
	} else {
		res.IsEnrolled = res.EnrollmentID != ""
	}
	if !res.IsEnrolled {
		res.EnrollmentID = ""
	}
	return res, nil
}
