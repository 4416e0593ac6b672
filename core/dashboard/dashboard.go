// Package dashboard derives the per-role statistics shown on a user's home page.
package dashboard

import (
	"context"
	"math"
	"time"

	"github.com/trezcool/coursehub/core"
	"github.com/trezcool/coursehub/core/calendar"
	"github.com/trezcool/coursehub/core/course"
	"github.com/trezcool/coursehub/core/enrollment"
	"github.com/trezcool/coursehub/core/grade"
	"github.com/trezcool/coursehub/core/user"
)

const upcomingEventsLimit = 5

type (
	Stats struct {
		Role       user.Role        `json:"role"`
		Student    *StudentStats    `json:"student,omitempty"`
		Instructor *InstructorStats `json:"instructor,omitempty"`
		Overview   *Overview        `json:"overview,omitempty"`
	}

	StudentStats struct {
		Enrolled        int              `json:"enrolled"`
		Completed       int              `json:"completed"`
		AverageProgress float64          `json:"average_progress"`
		AverageGrade    float64          `json:"average_grade"` // percentage
		UpcomingEvents  []calendar.Event `json:"upcoming_events"`
	}

	InstructorStats struct {
		Courses         int           `json:"courses"`
		Enrollments     int           `json:"enrollments"`
		AverageProgress float64       `json:"average_progress"`
		PerCourse       []CourseStats `json:"per_course"`
	}

	CourseStats struct {
		CourseID        string        `json:"course_id"`
		Title           string        `json:"title"`
		Status          course.Status `json:"status"`
		Enrolled        int           `json:"enrolled"`
		Completed       int           `json:"completed"`
		AverageProgress float64       `json:"average_progress"`
	}

	Overview struct {
		UsersByRole     map[user.Role]int     `json:"users_by_role"`
		CoursesByStatus map[course.Status]int `json:"courses_by_status"`
		Enrollments     int                   `json:"enrollments"`
		Completed       int                   `json:"completed"`
		AverageGrade    float64               `json:"average_grade"`
	}
)

type Service struct {
	users       user.ServiceInterface
	courses     course.ServiceInterface
	enrollments enrollment.ServiceInterface
	events      calendar.ServiceInterface
	grades      grade.ServiceInterface
	now         func() time.Time
}

func NewService(
	users user.ServiceInterface,
	courses course.ServiceInterface,
	enrollments enrollment.ServiceInterface,
	events calendar.ServiceInterface,
	grades grade.ServiceInterface,
) *Service {
	return &Service{
		users:       users,
		courses:     courses,
		enrollments: enrollments,
		events:      events,
		grades:      grades,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// For returns the dashboard of usr.
func (svc *Service) For(ctx context.Context, usr user.User) (Stats, error) {
	stats := Stats{Role: usr.Role}
	var err error
	switch usr.Role {
	case user.RoleStudent:
		stats.Student, err = svc.studentStats(ctx, usr)
	case user.RoleInstructor:
		stats.Instructor, err = svc.instructorStats(ctx, usr)
	default: // admin & tutor
		stats.Overview, err = svc.overview(ctx)
	}
	if err != nil {
		return Stats{}, err
	}
	return stats, nil
}

func (svc *Service) studentStats(ctx context.Context, usr user.User) (*StudentStats, error) {
	enrs, err := svc.enrollments.Query(ctx, &enrollment.QueryFilter{UserID: usr.ID}, nil)
	if err != nil {
		return nil, err
	}
	stats := &StudentStats{Enrolled: len(enrs)}
	courseIDs := make([]string, 0, len(enrs))
	progress := make([]float64, 0, len(enrs))
	for _, enr := range enrs {
		courseIDs = append(courseIDs, enr.CourseID)
		progress = append(progress, float64(enr.Progress))
		if enr.Completed {
			stats.Completed++
		}
	}
	stats.AverageProgress = average(progress)

	grds, err := svc.grades.Query(ctx, &grade.QueryFilter{UserID: usr.ID}, nil)
	if err != nil {
		return nil, err
	}
	stats.AverageGrade = averageGrade(grds)

	evts, err := svc.events.Query(ctx, &calendar.QueryFilter{
		Audience: &calendar.Audience{UserID: usr.ID, CourseIDs: courseIDs},
		From:     svc.now(),
	}, []core.Ordering{{Field: "starts_at", Ascending: true}})
	if err != nil {
		return nil, err
	}
	if len(evts) > upcomingEventsLimit {
		evts = evts[:upcomingEventsLimit]
	}
	stats.UpcomingEvents = evts
	return stats, nil
}

func (svc *Service) instructorStats(ctx context.Context, usr user.User) (*InstructorStats, error) {
	crss, err := svc.courses.Query(ctx, &course.QueryFilter{InstructorID: usr.ID}, []core.Ordering{{Field: "title", Ascending: true}})
	if err != nil {
		return nil, err
	}
	stats := &InstructorStats{Courses: len(crss), PerCourse: make([]CourseStats, 0, len(crss))}
	if len(crss) == 0 {
		return stats, nil
	}

	courseIDs := make([]string, 0, len(crss))
	for _, crs := range crss {
		courseIDs = append(courseIDs, crs.ID)
	}
	enrs, err := svc.enrollments.Query(ctx, &enrollment.QueryFilter{CourseIDs: courseIDs}, nil)
	if err != nil {
		return nil, err
	}
	byCourse := make(map[string][]enrollment.Enrollment, len(crss))
	all := make([]float64, 0, len(enrs))
	for _, enr := range enrs {
		byCourse[enr.CourseID] = append(byCourse[enr.CourseID], enr)
		all = append(all, float64(enr.Progress))
	}
	stats.Enrollments = len(enrs)
	stats.AverageProgress = average(all)

	for _, crs := range crss {
		cs := CourseStats{CourseID: crs.ID, Title: crs.Title, Status: crs.Status, Enrolled: len(byCourse[crs.ID])}
		progress := make([]float64, 0, cs.Enrolled)
		for _, enr := range byCourse[crs.ID] {
			progress = append(progress, float64(enr.Progress))
			if enr.Completed {
				cs.Completed++
			}
		}
		cs.AverageProgress = average(progress)
		stats.PerCourse = append(stats.PerCourse, cs)
	}
	return stats, nil
}

func (svc *Service) overview(ctx context.Context) (*Overview, error) {
	ov := &Overview{
		UsersByRole:     make(map[user.Role]int, len(user.AllRoles)),
		CoursesByStatus: make(map[course.Status]int, 3),
	}
	for _, r := range user.AllRoles {
		ov.UsersByRole[r] = 0
	}
	for _, s := range []course.Status{course.StatusDraft, course.StatusPublished, course.StatusArchived} {
		ov.CoursesByStatus[s] = 0
	}

	usrs, err := svc.users.Query(ctx, &user.QueryFilter{}, nil)
	if err != nil {
		return nil, err
	}
	for _, u := range usrs {
		ov.UsersByRole[u.Role]++
	}

	crss, err := svc.courses.Query(ctx, &course.QueryFilter{}, nil)
	if err != nil {
		return nil, err
	}
	for _, c := range crss {
		ov.CoursesByStatus[c.Status]++
	}

	enrs, err := svc.enrollments.Query(ctx, &enrollment.QueryFilter{}, nil)
	if err != nil {
		return nil, err
	}
	ov.Enrollments = len(enrs)
	for _, enr := range enrs {
		if enr.Completed {
			ov.Completed++
		}
	}

	grds, err := svc.grades.Query(ctx, &grade.QueryFilter{}, nil)
	if err != nil {
		return nil, err
	}
	ov.AverageGrade = averageGrade(grds)
	return ov, nil
}

func averageGrade(grds []grade.Grade) float64 {
	pcts := make([]float64, 0, len(grds))
	for _, g := range grds {
		pcts = append(pcts, g.Percent())
	}
	return average(pcts)
}

// average returns the mean of values rounded to 2 decimals, 0 when empty.
func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return math.Round(sum/float64(len(values))*100) / 100
}
