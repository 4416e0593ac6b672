package course

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/coursehub/core"
)

var (
	// errors
	ErrNotFound         = errors.New("course not found")
	ErrMaterialNotFound = errors.New("material not found")
	ErrTestNotFound     = errors.New("test not found")
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		// QueryCourses applies AND operation on available QueryFilter fields.
		QueryCourses(ctx context.Context, filter *QueryFilter, ordering []core.Ordering) ([]Course, error)
		GetCourseByID(ctx context.Context, id string) (Course, error)
		UpdateCourse(ctx context.Context, crs Course) (Course, error)
		DeleteCourse(ctx context.Context, id string) error

		CreateMaterial(ctx context.Context, mat Material) (Material, error)
		// QueryMaterials returns the materials of a course sorted by Material.Order.
		QueryMaterials(ctx context.Context, courseID string) ([]Material, error)
		GetMaterial(ctx context.Context, courseID, id string) (Material, error)
		DeleteMaterial(ctx context.Context, courseID, id string) error

		CreateTest(ctx context.Context, tst Test) (Test, error)
		QueryTests(ctx context.Context, courseID string) ([]Test, error)
		GetTest(ctx context.Context, courseID, id string) (Test, error)
		DeleteTest(ctx context.Context, courseID, id string) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, instructorID string, nc NewCourse) (Course, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.Ordering) ([]Course, error)
		GetByID(ctx context.Context, id string) (Course, error)
		Update(ctx context.Context, id string, uc UpdateCourse) (Course, error)
		Delete(ctx context.Context, id string) error

		AddMaterial(ctx context.Context, courseID string, nm NewMaterial) (Material, error)
		Materials(ctx context.Context, courseID string) ([]Material, error)
		DeleteMaterial(ctx context.Context, courseID, id string) error

		AddTest(ctx context.Context, courseID string, nt NewTest) (Test, error)
		Tests(ctx context.Context, courseID string) ([]Test, error)
		GetTest(ctx context.Context, courseID, id string) (Test, error)
		DeleteTest(ctx context.Context, courseID, id string) error
	}

	Service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, instructorID string, nc NewCourse) (Course, error) {
	if nc.InstructorID != "" {
		instructorID = nc.InstructorID
	}
	status := nc.Status
	if status == "" {
		status = StatusDraft
	}
	now := time.Now().UTC()
	return svc.repo.CreateCourse(ctx, Course{
		Title:        nc.Title,
		Description:  nc.Description,
		Category:     nc.Category,
		InstructorID: instructorID,
		Price:        nc.Price,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.Ordering) ([]Course, error) {
	return svc.repo.QueryCourses(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, uc UpdateCourse) (Course, error) {
	crs, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return Course{}, err
	}
	if uc.Title != nil {
		crs.Title = *uc.Title
	}
	if uc.Description != nil {
		crs.Description = *uc.Description
	}
	if uc.Category != nil {
		crs.Category = *uc.Category
	}
	if uc.Price != nil {
		crs.Price = *uc.Price
	}
	if uc.Status != nil {
		crs.Status = *uc.Status
	}
	if uc.Rating != nil {
		crs.Rating = *uc.Rating
	}
	crs.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourse(ctx, crs)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteCourse(ctx, id)
}

func (svc *Service) AddMaterial(ctx context.Context, courseID string, nm NewMaterial) (Material, error) {
	if _, err := svc.repo.GetCourseByID(ctx, courseID); err != nil {
		return Material{}, err
	}
	return svc.repo.CreateMaterial(ctx, Material{
		CourseID:  courseID,
		Title:     nm.Title,
		Type:      nm.Type,
		URL:       nm.URL,
		Content:   nm.Content,
		Order:     nm.Order,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *Service) Materials(ctx context.Context, courseID string) ([]Material, error) {
	return svc.repo.QueryMaterials(ctx, courseID)
}

func (svc *Service) DeleteMaterial(ctx context.Context, courseID, id string) error {
	return svc.repo.DeleteMaterial(ctx, courseID, id)
}

func (svc *Service) AddTest(ctx context.Context, courseID string, nt NewTest) (Test, error) {
	if _, err := svc.repo.GetCourseByID(ctx, courseID); err != nil {
		return Test{}, err
	}
	tst := Test{
		CourseID:     courseID,
		Title:        nt.Title,
		Questions:    nt.Questions,
		PassingScore: nt.PassingScore,
		CreatedAt:    time.Now().UTC(),
	}
	if nt.DueAt != nil {
		due := nt.DueAt.UTC()
		tst.DueAt = &due
	}
	return svc.repo.CreateTest(ctx, tst)
}

func (svc *Service) Tests(ctx context.Context, courseID string) ([]Test, error) {
	return svc.repo.QueryTests(ctx, courseID)
}

func (svc *Service) GetTest(ctx context.Context, courseID, id string) (Test, error) {
	return svc.repo.GetTest(ctx, courseID, id)
}

func (svc *Service) DeleteTest(ctx context.Context, courseID, id string) error {
	return svc.repo.DeleteTest(ctx, courseID, id)
}
