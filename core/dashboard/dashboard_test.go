package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/coursehub/core/calendar"
	"github.com/trezcool/coursehub/core/course"
	"github.com/trezcool/coursehub/core/enrollment"
	"github.com/trezcool/coursehub/core/grade"
	"github.com/trezcool/coursehub/core/user"
	inmemdb "github.com/trezcool/coursehub/storage/database/inmem"
	"github.com/trezcool/coursehub/storage/fixtures"
)

func newTestService(t *testing.T) (*Service, *calendar.Service) {
	t.Helper()
	db, err := inmemdb.Open()
	require.NoError(t, err)
	fx, err := fixtures.Default()
	require.NoError(t, err)
	require.NoError(t, db.Seed(fx))

	events := calendar.NewService(inmemdb.NewEventRepository(db))
	svc := NewService(
		user.NewService(inmemdb.NewUserRepository(db), nil),
		course.NewService(inmemdb.NewCourseRepository(db)),
		enrollment.NewService(inmemdb.NewEnrollmentRepository(db), nil),
		events,
		grade.NewService(inmemdb.NewGradeRepository(db)),
	)
	return svc, events
}

func TestService_studentUpcomingEvents(t *testing.T) {
	svc, events := newTestService(t)
	ctx := context.Background()
	barbara := user.User{ID: "user-student-1", Role: user.RoleStudent, IsActive: true}

	// between the lecture & the midterm
	svc.now = func() time.Time { return time.Date(2030, 5, 5, 0, 0, 0, 0, time.UTC) }
	stats, err := svc.For(ctx, barbara)
	require.NoError(t, err)
	require.Len(t, stats.Student.UpcomingEvents, 1)
	assert.Equal(t, "event-2", stats.Student.UpcomingEvents[0].ID)

	// capped
	start := time.Date(2030, 6, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < upcomingEventsLimit+2; i++ {
		_, err := events.Create(ctx, barbara.ID, calendar.NewEvent{
			Title:    "Revision",
			Type:     calendar.TypeOther,
			StartsAt: start.AddDate(0, 0, i),
			EndsAt:   start.AddDate(0, 0, i).Add(time.Hour),
		})
		require.NoError(t, err)
	}
	stats, err = svc.For(ctx, barbara)
	require.NoError(t, err)
	require.Len(t, stats.Student.UpcomingEvents, upcomingEventsLimit)
	assert.Equal(t, "event-2", stats.Student.UpcomingEvents[0].ID)

	// nothing left
	svc.now = func() time.Time { return time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC) }
	stats, err = svc.For(ctx, barbara)
	require.NoError(t, err)
	assert.Empty(t, stats.Student.UpcomingEvents)
}

func TestService_instructorWithoutCourses(t *testing.T) {
	svc, _ := newTestService(t)

	stats, err := svc.For(context.Background(), user.User{ID: "new-instructor", Role: user.RoleInstructor, IsActive: true})
	require.NoError(t, err)
	require.NotNil(t, stats.Instructor)
	assert.Zero(t, stats.Instructor.Courses)
	assert.Zero(t, stats.Instructor.Enrollments)
	assert.Equal(t, []CourseStats{}, stats.Instructor.PerCourse)
}

func TestAverage(t *testing.T) {
	assert.Zero(t, average(nil))
	assert.Equal(t, 70.0, average([]float64{40, 100}))
	assert.Equal(t, 33.33, average([]float64{0, 0, 100}))
	assert.Equal(t, 69.0, averageGrade([]grade.Grade{
		{Score: 88, MaxScore: 100},
		{Score: 1, MaxScore: 2},
	}))
	assert.Equal(t, 50.0, averageGrade([]grade.Grade{{Score: 5, MaxScore: 0}, {Score: 1, MaxScore: 1}}))
}
