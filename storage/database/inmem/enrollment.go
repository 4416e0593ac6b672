package inmemdb

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"github.com/trezcool/coursehub/core"
	"github.com/trezcool/coursehub/core/course"
	"github.com/trezcool/coursehub/core/enrollment"
)

var enrollmentComparators = map[string]core.Comparator[enrollment.Enrollment]{
	"progress":    func(a, b enrollment.Enrollment) int { return core.CompareNumbers(a.Progress, b.Progress) },
	"completed":   func(a, b enrollment.Enrollment) int { return core.CompareBools(a.Completed, b.Completed) },
	"enrolled_at": func(a, b enrollment.Enrollment) int { return core.CompareTimes(a.EnrolledAt, b.EnrolledAt) },
	"updated_at":  func(a, b enrollment.Enrollment) int { return core.CompareTimes(a.UpdatedAt, b.UpdatedAt) },
}

// enrollmentRepository locks the enrollment table before the course table.
type enrollmentRepository struct {
	db     *table[enrollment.Enrollment]
	course *table[course.Course]
}

var _ enrollment.Repository = (*enrollmentRepository)(nil)

func NewEnrollmentRepository(db *DB) enrollment.Repository {
	return &enrollmentRepository{db: db.enrollment, course: db.course}
}

func (repo *enrollmentRepository) find(userID, courseID string) (enrollment.Enrollment, bool) {
	for _, enr := range repo.db.all(nil) {
		if enr.UserID == userID && enr.CourseID == courseID {
			return enr, true
		}
	}
	return enrollment.Enrollment{}, false
}

func (repo *enrollmentRepository) adjustEnrolled(courseID string, delta int) {
	repo.course.Lock()
	defer repo.course.Unlock()

	if crs, ok := repo.course.get(courseID); ok {
		crs.Enrolled += delta
		if crs.Enrolled < 0 {
			crs.Enrolled = 0
		}
		repo.course.update(courseID, crs)
	}
}

func (repo *enrollmentRepository) CreateEnrollment(_ context.Context, enr enrollment.Enrollment) (enrollment.Enrollment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.find(enr.UserID, enr.CourseID); ok {
		return enrollment.Enrollment{}, enrollment.ErrAlreadyEnrolled
	}
	enr.ID = uuid.New().String()
	repo.db.insert(enr.ID, enr)
	repo.adjustEnrolled(enr.CourseID, 1)
	return enr, nil
}

func (repo *enrollmentRepository) QueryEnrollments(_ context.Context, filter *enrollment.QueryFilter, ordering []core.Ordering) ([]enrollment.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter == nil {
		filter = new(enrollment.QueryFilter)
	}
	enrs := repo.db.all(func(enr enrollment.Enrollment) bool {
		if filter.UserID != "" && enr.UserID != filter.UserID {
			return false
		}
		if filter.CourseIDs != nil && !slices.Contains(filter.CourseIDs, enr.CourseID) {
			return false
		}
		if filter.Completed != nil && enr.Completed != *filter.Completed {
			return false
		}
		return true
	})
	core.SortBy(enrs, ordering, enrollmentComparators)
	return enrs, nil
}

func (repo *enrollmentRepository) GetEnrollmentByID(_ context.Context, id string) (enrollment.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if enr, ok := repo.db.get(id); ok {
		return enr, nil
	}
	return enrollment.Enrollment{}, enrollment.ErrNotFound
}

func (repo *enrollmentRepository) GetEnrollment(_ context.Context, userID, courseID string) (enrollment.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if enr, ok := repo.find(userID, courseID); ok {
		return enr, nil
	}
	return enrollment.Enrollment{}, enrollment.ErrNotFound
}

func (repo *enrollmentRepository) UpdateEnrollment(_ context.Context, enr enrollment.Enrollment) (enrollment.Enrollment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if !repo.db.update(enr.ID, enr) {
		return enrollment.Enrollment{}, enrollment.ErrNotFound
	}
	return enr, nil
}

func (repo *enrollmentRepository) DeleteEnrollment(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	enr, ok := repo.db.get(id)
	if !ok {
		return enrollment.ErrNotFound
	}
	repo.db.delete(id)
	repo.adjustEnrolled(enr.CourseID, -1)
	return nil
}
