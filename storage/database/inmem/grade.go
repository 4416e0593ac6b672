package inmemdb

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"github.com/trezcool/coursehub/core"
	"github.com/trezcool/coursehub/core/grade"
)

var gradeComparators = map[string]core.Comparator[grade.Grade]{
	"title":     func(a, b grade.Grade) int { return core.CompareStrings(a.Title, b.Title) },
	"score":     func(a, b grade.Grade) int { return core.CompareNumbers(a.Percent(), b.Percent()) },
	"graded_at": func(a, b grade.Grade) int { return core.CompareTimes(a.GradedAt, b.GradedAt) },
}

type gradeRepository struct {
	db *table[grade.Grade]
}

var _ grade.Repository = (*gradeRepository)(nil)

func NewGradeRepository(db *DB) grade.Repository {
	return &gradeRepository{db: db.grade}
}

func (repo *gradeRepository) CreateGrade(_ context.Context, grd grade.Grade) (grade.Grade, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	grd.ID = uuid.New().String()
	repo.db.insert(grd.ID, grd)
	return grd, nil
}

func (repo *gradeRepository) QueryGrades(_ context.Context, filter *grade.QueryFilter, ordering []core.Ordering) ([]grade.Grade, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter == nil {
		filter = new(grade.QueryFilter)
	}
	grds := repo.db.all(func(grd grade.Grade) bool {
		if filter.UserID != "" && grd.UserID != filter.UserID {
			return false
		}
		if filter.CourseIDs != nil && !slices.Contains(filter.CourseIDs, grd.CourseID) {
			return false
		}
		if filter.CourseID != "" && grd.CourseID != filter.CourseID {
			return false
		}
		if filter.TestID != "" && grd.TestID != filter.TestID {
			return false
		}
		return true
	})
	core.SortBy(grds, ordering, gradeComparators)
	return grds, nil
}

func (repo *gradeRepository) GetGradeByID(_ context.Context, id string) (grade.Grade, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if grd, ok := repo.db.get(id); ok {
		return grd, nil
	}
	return grade.Grade{}, grade.ErrNotFound
}

func (repo *gradeRepository) UpdateGrade(_ context.Context, grd grade.Grade) (grade.Grade, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if !repo.db.update(grd.ID, grd) {
		return grade.Grade{}, grade.ErrNotFound
	}
	return grd, nil
}

func (repo *gradeRepository) DeleteGrade(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if !repo.db.delete(id) {
		return grade.ErrNotFound
	}
	return nil
}
