package backendsvc

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/masomo-storefront/core/course"
	"github.com/trezcool/masomo-storefront/core/listing"
)

var courseListOpts = listing.Options{Keys: []string{"courses"}}

type wireModule struct {
	ids
	Title       string `json:"title"`
	Description string `json:"description"`
	VideoURL    string `json:"videoUrl"`
	Duration    number `json:"duration"`
	Order       number `json:"order"`
}

type wireBatch struct {
	BatchID     string `json:"batchId"`
	StartDate   date   `json:"startDate"`
	EndDate     date   `json:"endDate"`
	MaxStudents number `json:"maxStudents"`
}

type wireCourse struct {
	ids
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Instructor  string       `json:"instructor"`
	Price       number       `json:"price"`
	Category    string       `json:"category"`
	Tags        []string     `json:"tags"`
	Thumbnail   string       `json:"thumbnail"`
	Modules     []wireModule `json:"modules"`
	Batches     []wireBatch  `json:"batches"`
	IsDeleted   bool         `json:"isDeleted"`
	CreatedAt   timestamp    `json:"createdAt"`
	UpdatedAt   timestamp    `json:"updatedAt"`
}

// outgoing payloads

type wireModuleInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	VideoURL    string `json:"videoUrl,omitempty"`
	Duration    int    `json:"duration"`
	Order       int    `json:"order"`
}

type wireBatchInput struct {
	BatchID     string `json:"batchId"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate,omitempty"`
	MaxStudents int    `json:"maxStudents,omitempty"`
}

type wireCourseInput struct {
	Title       string            `json:"title,omitempty"`
	Description string            `json:"description,omitempty"`
	Instructor  string            `json:"instructor,omitempty"`
	Price       *float64          `json:"price,omitempty"`
	Category    string            `json:"category,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Thumbnail   string            `json:"thumbnail,omitempty"`
	Modules     []wireModuleInput `json:"modules,omitempty"`
	Batches     []wireBatchInput  `json:"batches,omitempty"`
}

type courseRepository struct {
	cl *Client
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(cl *Client) course.Repository {
	return &courseRepository{cl: cl}
}

func (repo courseRepository) unwireModules(wms []wireModule) []course.Module {
	mods := make([]course.Module, 0, len(wms))
	for _, wm := range wms {
		mods = append(mods, course.Module{
			ID:          wm.get(),
			Title:       wm.Title,
			Description: wm.Description,
			VideoURL:    wm.VideoURL,
			Duration:    int(wm.Duration),
			Order:       int(wm.Order),
		})
	}
	return mods
}

func (repo courseRepository) unwire(wc wireCourse) course.Course {
	batches := make([]course.Batch, 0, len(wc.Batches))
	for _, wb := range wc.Batches {
		batches = append(batches, course.Batch{
			BatchID:     wb.BatchID,
			StartDate:   string(wb.StartDate),
			EndDate:     string(wb.EndDate),
			MaxStudents: int(wb.MaxStudents),
		})
	}
	tags := wc.Tags
	if tags == nil {
		tags = []string{}
	}
	return course.Course{
		ID:          wc.get(),
		Title:       wc.Title,
		Description: wc.Description,
		Instructor:  wc.Instructor,
		Price:       float64(wc.Price),
		Category:    wc.Category,
		Tags:        tags,
		Thumbnail:   wc.Thumbnail,
		Modules:     repo.unwireModules(wc.Modules),
		Batches:     batches,
		IsDeleted:   wc.IsDeleted,
		CreatedAt:   wc.CreatedAt.Time(),
		UpdatedAt:   wc.UpdatedAt.Time(),
	}
}

func (repo courseRepository) unwireSlice(wcs []wireCourse) []course.Course {
	courses := make([]course.Course, 0, len(wcs))
	for _, wc := range wcs {
		courses = append(courses, repo.unwire(wc))
	}
	return courses
}

func wireModules(mods []course.Module) []wireModuleInput {
	if mods == nil {
		return nil
	}
	wms := make([]wireModuleInput, 0, len(mods))
	for _, m := range mods {
		wms = append(wms, wireModuleInput{
			Title:       m.Title,
			Description: m.Description,
			VideoURL:    m.VideoURL,
			Duration:    m.Duration,
			Order:       m.Order,
		})
	}
	return wms
}

func wireBatches(batches []course.Batch) []wireBatchInput {
	if batches == nil {
		return nil
	}
	wbs := make([]wireBatchInput, 0, len(batches))
	for _, b := range batches {
		wbs = append(wbs, wireBatchInput{
			BatchID:     b.BatchID,
			StartDate:   b.StartDate,
			EndDate:     b.EndDate,
			MaxStudents: b.MaxStudents,
		})
	}
	return wbs
}

func (repo courseRepository) wireNew(nc course.NewCourse) wireCourseInput {
	price := nc.Price
	tags := nc.Tags
	if tags == nil {
		tags = []string{}
	}
	return wireCourseInput{
		Title:       nc.Title,
		Description: nc.Description,
		Instructor:  nc.Instructor,
		Price:       &price,
		Category:    nc.Category,
		Tags:        tags,
		Thumbnail:   nc.Thumbnail,
		Modules:     wireModules(nc.Modules),
		Batches:     wireBatches(nc.Batches),
	}
}

func (repo courseRepository) wireUpdate(uc course.UpdateCourse) wireCourseInput {
	return wireCourseInput{
		Title:       uc.Title,
		Description: uc.Description,
		Instructor:  uc.Instructor,
		Price:       uc.Price,
		Category:    uc.Category,
		Tags:        uc.Tags,
		Thumbnail:   uc.Thumbnail,
		Modules:     wireModules(uc.Modules),
		Batches:     wireBatches(uc.Batches),
	}
}

func (repo courseRepository) QueryCourses(ctx context.Context, session string, filter course.QueryFilter) (listing.Response[course.Course], error) {
	opts := courseListOpts
	opts.Limit = filter.Limit

	resp, err := repo.cl.get(ctx, tagCourses, call{
		path:     "/courses",
		endpoint: "/courses",
		session:  session,
		query:    filter.Params(),
	})
	if err != nil {
		return listing.Empty[course.Course](filter.Limit), err
	}
	page, err := normalize[wireCourse](repo.cl, "/courses", resp, opts)
	return listing.Response[course.Course]{Items: repo.unwireSlice(page.Items), Pagination: page.Pagination}, err
}

func (repo courseRepository) GetCourseByID(ctx context.Context, session, id string) (course.Course, error) {
	resp, err := repo.cl.get(ctx, tagCourses, call{
		path:     "/courses/" + url.PathEscape(id),
		endpoint: "/courses/:id",
		session:  session,
	})
	if err != nil {
		if StatusCode(err) == http.StatusNotFound {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, err
	}
	var wc wireCourse
	if err := decodeData(resp, &wc); err != nil {
		return course.Course{}, err
	}
	if wc.get() == "" {
		return course.Course{}, course.ErrNotFound
	}
	return repo.unwire(wc), nil
}

func (repo courseRepository) mutate(ctx context.Context, c call) (course.Course, error) {
	resp, err := repo.cl.do(ctx, c)
	if err != nil {
		if StatusCode(err) == http.StatusNotFound {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, err
	}
	// the catalog changed for everyone
	repo.cl.cache.invalidate(allSessions, tagCourses, tagEnrollments)

	var wc wireCourse
	if c.method == rest.Delete || resp.StatusCode == http.StatusNoContent {
		return course.Course{}, nil
	}
	if err := decodeData(resp, &wc); err != nil {
		return course.Course{}, errors.Wrap(err, "decoding course")
	}
	return repo.unwire(wc), nil
}

func (repo courseRepository) CreateCourse(ctx context.Context, session string, nc course.NewCourse) (course.Course, error) {
	return repo.mutate(ctx, call{
		method:   rest.Post,
		path:     "/courses",
		endpoint: "/courses",
		session:  session,
		body:     repo.wireNew(nc),
	})
}

func (repo courseRepository) UpdateCourse(ctx context.Context, session, id string, uc course.UpdateCourse) (course.Course, error) {
	return repo.mutate(ctx, call{
		method:   rest.Patch,
		path:     "/courses/" + url.PathEscape(id),
		endpoint: "/courses/:id",
		session:  session,
		body:     repo.wireUpdate(uc),
	})
}

func (repo courseRepository) DeleteCourse(ctx context.Context, session, id string) error {
	_, err := repo.mutate(ctx, call{
		method:   rest.Delete,
		path:     "/courses/" + url.PathEscape(id),
		endpoint: "/courses/:id",
		session:  session,
	})
	return err
}
