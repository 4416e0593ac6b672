package inmemdb

import (
	"context"
	"slices"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/coursehub/core"
	"github.com/trezcool/coursehub/core/course"
)

var courseComparators = map[string]core.Comparator[course.Course]{
	"title":      func(a, b course.Course) int { return core.CompareStrings(a.Title, b.Title) },
	"category":   func(a, b course.Course) int { return core.CompareStrings(a.Category, b.Category) },
	"status":     func(a, b course.Course) int { return core.CompareStrings(string(a.Status), string(b.Status)) },
	"price":      func(a, b course.Course) int { return core.CompareNumbers(a.Price, b.Price) },
	"enrolled":   func(a, b course.Course) int { return core.CompareNumbers(a.Enrolled, b.Enrolled) },
	"rating":     func(a, b course.Course) int { return core.CompareNumbers(a.Rating, b.Rating) },
	"created_at": func(a, b course.Course) int { return core.CompareTimes(a.CreatedAt, b.CreatedAt) },
	"updated_at": func(a, b course.Course) int { return core.CompareTimes(a.UpdatedAt, b.UpdatedAt) },
}

type courseRepository struct {
	db       *table[course.Course]
	material *table[course.Material]
	test     *table[course.Test]
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db.course, material: db.material, test: db.test}
}

func (repo *courseRepository) CreateCourse(_ context.Context, crs course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	crs.ID = uuid.New().String()
	repo.db.insert(crs.ID, crs)
	return crs, nil
}

func (repo *courseRepository) QueryCourses(_ context.Context, filter *course.QueryFilter, ordering []core.Ordering) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter == nil {
		filter = new(course.QueryFilter)
	}
	courses := repo.db.all(func(crs course.Course) bool {
		if filter.VisibleTo != "" && !(crs.IsPublished() || crs.InstructorID == filter.VisibleTo) {
			return false
		}
		if filter.Search != "" && !(core.ContainsFold(crs.Title, filter.Search) ||
			core.ContainsFold(crs.Description, filter.Search) ||
			core.ContainsFold(crs.Category, filter.Search)) {
			return false
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, crs.Status) {
			return false
		}
		if filter.InstructorID != "" && crs.InstructorID != filter.InstructorID {
			return false
		}
		if filter.Category != "" && core.CompareStrings(crs.Category, filter.Category) != 0 {
			return false
		}
		return true
	})
	core.SortBy(courses, ordering, courseComparators)
	return courses, nil
}

func (repo *courseRepository) GetCourseByID(_ context.Context, id string) (course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if crs, ok := repo.db.get(id); ok {
		return crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

// UpdateCourse saves crs, keeping the stored enrolled count which only enrollments change.
func (repo *courseRepository) UpdateCourse(_ context.Context, crs course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.get(crs.ID)
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	crs.Enrolled = orig.Enrolled
	repo.db.update(crs.ID, crs)
	return crs, nil
}

func (repo *courseRepository) DeleteCourse(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if !repo.db.delete(id) {
		return course.ErrNotFound
	}
	return nil
}

func (repo *courseRepository) CreateMaterial(_ context.Context, mat course.Material) (course.Material, error) {
	repo.material.Lock()
	defer repo.material.Unlock()

	mat.ID = uuid.New().String()
	repo.material.insert(mat.ID, mat)
	return mat, nil
}

func (repo *courseRepository) QueryMaterials(_ context.Context, courseID string) ([]course.Material, error) {
	repo.material.RLock()
	defer repo.material.RUnlock()

	mats := repo.material.all(func(mat course.Material) bool { return mat.CourseID == courseID })
	sort.SliceStable(mats, func(i, j int) bool { return mats[i].Order < mats[j].Order })
	return mats, nil
}

func (repo *courseRepository) GetMaterial(_ context.Context, courseID, id string) (course.Material, error) {
	repo.material.RLock()
	defer repo.material.RUnlock()

	if mat, ok := repo.material.get(id); ok && mat.CourseID == courseID {
		return mat, nil
	}
	return course.Material{}, course.ErrMaterialNotFound
}

func (repo *courseRepository) DeleteMaterial(_ context.Context, courseID, id string) error {
	repo.material.Lock()
	defer repo.material.Unlock()

	if mat, ok := repo.material.get(id); !ok || mat.CourseID != courseID {
		return course.ErrMaterialNotFound
	}
	repo.material.delete(id)
	return nil
}

func (repo *courseRepository) CreateTest(_ context.Context, tst course.Test) (course.Test, error) {
	repo.test.Lock()
	defer repo.test.Unlock()

	tst.ID = uuid.New().String()
	tst.Questions = cloneQuestions(tst.Questions)
	repo.test.insert(tst.ID, tst)
	return tst, nil
}

func (repo *courseRepository) QueryTests(_ context.Context, courseID string) ([]course.Test, error) {
	repo.test.RLock()
	defer repo.test.RUnlock()

	tests := repo.test.all(func(tst course.Test) bool { return tst.CourseID == courseID })
	for i := range tests {
		tests[i].Questions = cloneQuestions(tests[i].Questions)
	}
	return tests, nil
}

func (repo *courseRepository) GetTest(_ context.Context, courseID, id string) (course.Test, error) {
	repo.test.RLock()
	defer repo.test.RUnlock()

	if tst, ok := repo.test.get(id); ok && tst.CourseID == courseID {
		tst.Questions = cloneQuestions(tst.Questions)
		return tst, nil
	}
	return course.Test{}, course.ErrTestNotFound
}

func (repo *courseRepository) DeleteTest(_ context.Context, courseID, id string) error {
	repo.test.Lock()
	defer repo.test.Unlock()

	if tst, ok := repo.test.get(id); !ok || tst.CourseID != courseID {
		return course.ErrTestNotFound
	}
	repo.test.delete(id)
	return nil
}

func cloneQuestions(qs []course.Question) []course.Question {
	if qs == nil {
		return nil
	}
	cloned := make([]course.Question, len(qs))
	for i, q := range qs {
		q.Options = slices.Clone(q.Options)
		cloned[i] = q
	}
	return cloned
}
