package grade

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/coursehub/core"
	"github.com/trezcool/coursehub/core/course"
	"github.com/trezcool/coursehub/core/permission"
	"github.com/trezcool/coursehub/core/user"
)

var ErrNotFound = errors.New("grade not found")

type (
	Repository interface {
		CreateGrade(ctx context.Context, grd Grade) (Grade, error)
		// QueryGrades applies AND operation on available QueryFilter fields.
		QueryGrades(ctx context.Context, filter *QueryFilter, ordering []core.Ordering) ([]Grade, error)
		GetGradeByID(ctx context.Context, id string) (Grade, error)
		UpdateGrade(ctx context.Context, grd Grade) (Grade, error)
		DeleteGrade(ctx context.Context, id string) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, grader user.User, crs course.Course, ng NewGrade) (Grade, error)
		Record(ctx context.Context, usr user.User, tst course.Test, res course.Result) (Grade, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.Ordering) ([]Grade, error)
		GetByID(ctx context.Context, id string) (Grade, error)
		Update(ctx context.Context, grader user.User, crs course.Course, id string, ug UpdateGrade) (Grade, error)
		Delete(ctx context.Context, grader user.User, crs course.Course, id string) error
	}

	Service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, grader user.User, crs course.Course, ng NewGrade) (Grade, error) {
	if !permission.CanGradeCourse(grader, crs) {
		return Grade{}, permission.ErrForbidden
	}
	return svc.repo.CreateGrade(ctx, Grade{
		UserID:   ng.UserID,
		CourseID: crs.ID,
		TestID:   ng.TestID,
		Title:    ng.Title,
		Score:    ng.Score,
		MaxScore: ng.MaxScore,
		Feedback: ng.Feedback,
		GradedBy: grader.ID,
		GradedAt: time.Now().UTC(),
	})
}

// Record stores the automatic grade of a scored test submission.
func (svc *Service) Record(ctx context.Context, usr user.User, tst course.Test, res course.Result) (Grade, error) {
	feedback := "failed"
	if res.Passed {
		feedback = "passed"
	}
	return svc.repo.CreateGrade(ctx, Grade{
		UserID:   usr.ID,
		CourseID: tst.CourseID,
		TestID:   tst.ID,
		Title:    tst.Title,
		Score:    float64(res.Correct),
		MaxScore: float64(res.Total),
		Feedback: feedback,
		GradedAt: time.Now().UTC(),
	})
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.Ordering) ([]Grade, error) {
	return svc.repo.QueryGrades(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Grade, error) {
	return svc.repo.GetGradeByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, grader user.User, crs course.Course, id string, ug UpdateGrade) (Grade, error) {
	if !permission.CanGradeCourse(grader, crs) {
		return Grade{}, permission.ErrForbidden
	}
	grd, err := svc.repo.GetGradeByID(ctx, id)
	if err != nil {
		return Grade{}, err
	}
	if ug.Title != nil {
		grd.Title = *ug.Title
	}
	if ug.Score != nil {
		grd.Score = *ug.Score
	}
	if ug.MaxScore != nil {
		grd.MaxScore = *ug.MaxScore
	}
	if ug.Feedback != nil {
		grd.Feedback = *ug.Feedback
	}
	grd.GradedBy = grader.ID
	grd.GradedAt = time.Now().UTC()
	return svc.repo.UpdateGrade(ctx, grd)
}

func (svc *Service) Delete(ctx context.Context, grader user.User, crs course.Course, id string) error {
	if !permission.CanGradeCourse(grader, crs) {
		return permission.ErrForbidden
	}
	return svc.repo.DeleteGrade(ctx, id)
}
