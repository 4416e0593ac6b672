package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/coursehub/core"
	"github.com/trezcool/coursehub/core/course"
	"github.com/trezcool/coursehub/core/grade"
	"github.com/trezcool/coursehub/core/user"
)

type gradeApi struct {
	svc       grade.ServiceInterface
	courseSvc course.ServiceInterface
	userSvc   user.ServiceInterface
	validate  *validator.Validate
}

func registerGradeAPI(g *echo.Group, authed []echo.MiddlewareFunc, deps ServerDeps) {
	api := gradeApi{
		svc:       deps.GradeSvc,
		courseSvc: deps.CourseSvc,
		userSvc:   deps.UserSvc,
		validate:  deps.Validate,
	}

	gg := g.Group("/grades", authed...)
	gg.GET("", api.query)
	gg.POST("", api.create)
	gg.PUT("/:id", api.update)
	gg.DELETE("/:id", api.destroy)
}

// getGrade returns the context user, the grade identified by the `id` path param & its course.
// Grades outlive their course: a deleted course comes back as an ownerless placeholder.
func (api *gradeApi) getGrade(ctx echo.Context) (user.User, grade.Grade, course.Course, error) {
	usr, err := getContextUser(ctx)
	if err != nil {
		return user.User{}, grade.Grade{}, course.Course{}, errors.Wrap(err, "getting context user")
	}
	grd, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return user.User{}, grade.Grade{}, course.Course{}, errors.Wrap(err, "finding grade by ID")
	}
	crs, err := api.courseSvc.GetByID(ctx.Request().Context(), grd.CourseID)
	if err != nil {
		if !errors.Is(err, course.ErrNotFound) {
			return user.User{}, grade.Grade{}, course.Course{}, errors.Wrap(err, "finding course by ID")
		}
		// deleted course: nobody owns it anymore, only role-level graders remain
		crs = course.Course{ID: grd.CourseID}
	}
	return usr, grd, crs, nil
}

// Handlers

// query lists the grades of the context user. Instructors get those of their courses,
// tutors & admins get everything.
func (api *gradeApi) query(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	filter := &grade.QueryFilter{
		CourseID: ctx.QueryParam("course_id"),
		TestID:   ctx.QueryParam("test_id"),
	}
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

	grades, err := api.svc.Query(ctx.Request().Context(), filter, parseOrdering(ctx))
	if err != nil {
		return errors.Wrap(err, "querying grades")
	}
	if grades == nil {
		grades = []grade.Grade{}
	}
	return ctx.JSON(http.StatusOK, echo.Map{"grades": grades})
}

func (api *gradeApi) create(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data grade.NewGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGrade")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	crs, err := api.courseSvc.GetByID(ctx.Request().Context(), data.CourseID)
	if err != nil {
		if errors.Is(err, course.ErrNotFound) {
			return core.NewValidationError(nil, core.FieldError{Field: "course_id", Error: "unknown course"})
		}
		return errors.Wrap(err, "finding course by ID")
	}
	ok, err := api.userSvc.Exists(ctx.Request().Context(), data.UserID)
	if err != nil {
		return errors.Wrap(err, "checking user")
	}
	if !ok {
		return core.NewValidationError(nil, core.FieldError{Field: "user_id", Error: "unknown user"})
	}

	grd, err := api.svc.Create(ctx.Request().Context(), usr, crs, data)
	if err != nil {
		return errors.Wrap(err, "creating grade")
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"grade": grd})
}

func (api *gradeApi) update(ctx echo.Context) error {
	usr, grd, crs, err := api.getGrade(ctx)
	if err != nil {
		return err
	}

	var data grade.UpdateGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateGrade")
	}
	if err := data.Validate(grd, api.validate); err != nil {
		return err
	}

	grd, err = api.svc.Update(ctx.Request().Context(), usr, crs, grd.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating grade")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"grade": grd})
}

func (api *gradeApi) destroy(ctx echo.Context) error {
	usr, grd, crs, err := api.getGrade(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), usr, crs, grd.ID); err != nil {
		return errors.Wrap(err, "deleting grade")
	}
	return ctx.NoContent(http.StatusNoContent)
}
