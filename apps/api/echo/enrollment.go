package echoapi

import (
	"net/http"
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/coursehub/core"
	"github.com/trezcool/coursehub/core/course"
	"github.com/trezcool/coursehub/core/enrollment"
	"github.com/trezcool/coursehub/core/permission"
	"github.com/trezcool/coursehub/core/user"
)

type enrollmentApi struct {
	svc       enrollment.ServiceInterface
	courseSvc course.ServiceInterface
	userSvc   user.ServiceInterface
	validate  *validator.Validate
}

func registerEnrollmentAPI(g *echo.Group, authed []echo.MiddlewareFunc, deps ServerDeps) {
	api := enrollmentApi{
		svc:       deps.EnrollmentSvc,
		courseSvc: deps.CourseSvc,
		userSvc:   deps.UserSvc,
		validate:  deps.Validate,
	}

	eg := g.Group("/enrollments", authed...)
	eg.GET("", api.query)
	eg.POST("", api.create)
	eg.PUT("/:id/progress", api.updateProgress)
	eg.DELETE("/:id", api.destroy)
}

// Handlers

// query lists the enrollments of the context user. Instructors get those of their courses,
// tutors & admins get everything (optionally filtered by user_id).
func (api *enrollmentApi) query(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	filter := &enrollment.QueryFilter{Completed: queryBool(ctx, "completed")}
	switch {
	case seesEverything(usr):
		filter.UserID = ctx.QueryParam("user_id")
	case usr.IsInstructor():
		if filter.CourseIDs, err = taughtCourseIDs(ctx.Request().Context(), api.courseSvc, usr); err != nil {
			return err
		}
		filter.UserID = ctx.QueryParam("user_id")
	default:
		filter.UserID = usr.ID
	}
	if courseID := ctx.QueryParam("course_id"); courseID != "" {
		if filter.CourseIDs != nil && !slices.Contains(filter.CourseIDs, courseID) {
			filter.CourseIDs = []string{}
		} else {
			filter.CourseIDs = []string{courseID}
		}
	}

	enrollments, err := api.svc.Query(ctx.Request().Context(), filter, parseOrdering(ctx))
	if err != nil {
		return errors.Wrap(err, "querying enrollments")
	}
	if enrollments == nil {
		enrollments = []enrollment.Enrollment{}
	}
	return ctx.JSON(http.StatusOK, echo.Map{"enrollments": enrollments})
}

func (api *enrollmentApi) create(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data enrollment.NewEnrollment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEnrollment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	student := usr
	if data.UserID != "" && data.UserID != usr.ID {
		if !permission.For(usr).CanManageUsers {
			return errHttpForbidden
		}
		student, err = api.userSvc.GetByID(ctx.Request().Context(), data.UserID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				return core.NewValidationError(nil, core.FieldError{Field: "user_id", Error: "unknown user"})
			}
			return errors.Wrap(err, "finding user by ID")
		}
	}

	crs, err := api.courseSvc.GetByID(ctx.Request().Context(), data.CourseID)
	if err != nil {
		return errors.Wrap(err, "finding course by ID")
	}
	if !permission.CanViewCourse(usr, crs) {
		return course.ErrNotFound
	}

	enr, err := api.svc.Enroll(ctx.Request().Context(), student, crs)
	if err != nil {
		return errors.Wrap(err, "enrolling")
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"enrollment": enr})
}

func (api *enrollmentApi) updateProgress(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data enrollment.UpdateProgress
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProgress")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	enr, err := api.svc.UpdateProgress(ctx.Request().Context(), usr, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating progress")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"enrollment": enr})
}

func (api *enrollmentApi) destroy(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err := api.svc.Unenroll(ctx.Request().Context(), usr, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "unenrolling")
	}
	return ctx.NoContent(http.StatusNoContent)
}
