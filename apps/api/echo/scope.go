package echoapi

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/coursehub/core/course"
	"github.com/trezcool/coursehub/core/enrollment"
	"github.com/trezcool/coursehub/core/permission"
	"github.com/trezcool/coursehub/core/user"
)

// seesEverything reports whether usr may list the records of every course.
func seesEverything(usr user.User) bool {
	return permission.For(usr).CanEditAnyCourse || usr.IsTutor()
}

// taughtCourseIDs returns the ids of the courses usr is the instructor of. Never nil.
func taughtCourseIDs(ctx context.Context, svc course.ServiceInterface, usr user.User) ([]string, error) {
	crss, err := svc.Query(ctx, &course.QueryFilter{InstructorID: usr.ID}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying taught courses")
	}
	ids := make([]string, 0, len(crss))
	for _, crs := range crss {
		ids = append(ids, crs.ID)
	}
	return ids, nil
}

// enrolledCourseIDs returns the ids of the courses usr is enrolled in. Never nil.
func enrolledCourseIDs(ctx context.Context, svc enrollment.ServiceInterface, usr user.User) ([]string, error) {
	enrs, err := svc.Query(ctx, &enrollment.QueryFilter{UserID: usr.ID}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}
	ids := make([]string, 0, len(enrs))
	for _, enr := range enrs {
		ids = append(ids, enr.CourseID)
	}
	return ids, nil
}
