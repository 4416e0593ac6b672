package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/coursehub/core"
	"github.com/trezcool/coursehub/core/course"
	"github.com/trezcool/coursehub/core/enrollment"
	"github.com/trezcool/coursehub/core/grade"
	"github.com/trezcool/coursehub/core/permission"
	"github.com/trezcool/coursehub/core/user"
)

var canCreateCourse = requirePermission(func(p permission.Permissions) bool { return p.CanCreateCourse })

type courseApi struct {
	svc           course.ServiceInterface
	userSvc       user.ServiceInterface
	enrollmentSvc enrollment.ServiceInterface
	gradeSvc      grade.ServiceInterface
	validate      *validator.Validate
}

func registerCourseAPI(g *echo.Group, authed []echo.MiddlewareFunc, deps ServerDeps) {
	api := courseApi{
		svc:           deps.CourseSvc,
		userSvc:       deps.UserSvc,
		enrollmentSvc: deps.EnrollmentSvc,
		gradeSvc:      deps.GradeSvc,
		validate:      deps.Validate,
	}

	cg := g.Group("/courses", authed...)
	cg.GET("", api.query)
	cg.POST("", api.create, canCreateCourse)
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update)
	cg.DELETE("/:id", api.destroy)
	cg.GET("/:id/enrollments", api.enrollments)

	cg.GET("/:id/materials", api.materials)
	cg.POST("/:id/materials", api.addMaterial)
	cg.DELETE("/:id/materials/:materialId", api.destroyMaterial)

	cg.GET("/:id/tests", api.tests)
	cg.POST("/:id/tests", api.addTest)
	cg.GET("/:id/tests/:testId", api.retrieveTest)
	cg.DELETE("/:id/tests/:testId", api.destroyTest)
	cg.POST("/:id/tests/:testId/submit", api.submitTest)
}

// getCourse returns the context user & the course identified by the `id` path param.
// Courses the user cannot see are reported as not found.
func (api *courseApi) getCourse(ctx echo.Context) (user.User, course.Course, error) {
	usr, err := getContextUser(ctx)
	if err != nil {
		return user.User{}, course.Course{}, errors.Wrap(err, "getting context user")
	}
	crs, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return user.User{}, course.Course{}, errors.Wrap(err, "finding course by ID")
	}
	if !permission.CanViewCourse(usr, crs) {
		return user.User{}, course.Course{}, course.ErrNotFound
	}
	return usr, crs, nil
}

// getEditableCourse is getCourse for routes that modify the course or its content.
func (api *courseApi) getEditableCourse(ctx echo.Context) (user.User, course.Course, error) {
	usr, crs, err := api.getCourse(ctx)
	if err != nil {
		return usr, crs, err
	}
	if !permission.CanEditCourse(usr, crs) {
		return usr, crs, permission.ErrForbidden
	}
	return usr, crs, nil
}

// getViewableContent is getCourse for routes that read materials & tests.
func (api *courseApi) getViewableContent(ctx echo.Context) (user.User, course.Course, error) {
	usr, crs, err := api.getCourse(ctx)
	if err != nil {
		return usr, crs, err
	}
	enrolled, err := api.enrollmentSvc.IsEnrolled(ctx.Request().Context(), usr.ID, crs.ID)
	if err != nil {
		return usr, crs, errors.Wrap(err, "checking enrollment")
	}
	if !permission.CanViewCourseContent(usr, crs, enrolled) {
		return usr, crs, permission.ErrForbidden
	}
	return usr, crs, nil
}

// Handlers

func (api *courseApi) query(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	filter := &course.QueryFilter{
		Search:       ctx.QueryParam("search"),
		InstructorID: ctx.QueryParam("instructor_id"),
		Category:     ctx.QueryParam("category"),
	}
	for _, s := range queryList(ctx, "status") {
		filter.Statuses = append(filter.Statuses, course.Status(s))
	}
	if !(permission.For(usr).CanEditAnyCourse || usr.IsTutor()) {
		filter.VisibleTo = usr.ID
	}
	filter.Clean()

	courses, err := api.svc.Query(ctx.Request().Context(), filter, parseOrdering(ctx))
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, echo.Map{"courses": courses})
}

func (api *courseApi) create(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	// only admins may create a course on behalf of an instructor
	if data.InstructorID != "" && data.InstructorID != usr.ID {
		if !permission.For(usr).CanEditAnyCourse {
			return errHttpForbidden
		}
		inst, err := api.userSvc.GetByID(ctx.Request().Context(), data.InstructorID)
		if err != nil && !errors.Is(err, user.ErrNotFound) {
			return errors.Wrap(err, "finding instructor by ID")
		}
		if err != nil || !inst.IsInstructor() {
			return core.NewValidationError(nil, core.FieldError{Field: "instructor_id", Error: "unknown instructor"})
		}
	}
	if data.Status != course.StatusDraft && !permission.For(usr).CanPublishCourse {
		return errHttpForbidden
	}

	crs, err := api.svc.Create(ctx.Request().Context(), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"course": crs})
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	_, crs, err := api.getCourse(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"course": crs})
}

func (api *courseApi) update(ctx echo.Context) error {
	usr, crs, err := api.getEditableCourse(ctx)
	if err != nil {
		return err
	}

	var data course.UpdateCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	if data.Status != nil && *data.Status != crs.Status && !permission.CanPublishCourse(usr, crs) {
		return errHttpForbidden
	}

	crs, err = api.svc.Update(ctx.Request().Context(), crs.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"course": crs})
}

func (api *courseApi) destroy(ctx echo.Context) error {
	usr, crs, err := api.getCourse(ctx)
	if err != nil {
		return err
	}
	if !permission.CanDeleteCourse(usr, crs) {
		return errHttpForbidden
	}

	if err := api.svc.Delete(ctx.Request().Context(), crs.ID); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) enrollments(ctx echo.Context) error {
	usr, crs, err := api.getCourse(ctx)
	if err != nil {
		return err
	}
	if !permission.CanViewEnrollments(usr, crs) {
		return errHttpForbidden
	}

	filter := &enrollment.QueryFilter{CourseIDs: []string{crs.ID}, Completed: queryBool(ctx, "completed")}
	enrollments, err := api.enrollmentSvc.Query(ctx.Request().Context(), filter, parseOrdering(ctx))
	if err != nil {
		return errors.Wrap(err, "querying enrollments")
	}
	if enrollments == nil {
		enrollments = []enrollment.Enrollment{}
	}
	return ctx.JSON(http.StatusOK, echo.Map{"enrollments": enrollments})
}

func (api *courseApi) materials(ctx echo.Context) error {
	_, crs, err := api.getViewableContent(ctx)
	if err != nil {
		return err
	}

	materials, err := api.svc.Materials(ctx.Request().Context(), crs.ID)
	if err != nil {
		return errors.Wrap(err, "querying materials")
	}
	if materials == nil {
		materials = []course.Material{}
	}
	return ctx.JSON(http.StatusOK, echo.Map{"materials": materials})
}

func (api *courseApi) addMaterial(ctx echo.Context) error {
	_, crs, err := api.getEditableCourse(ctx)
	if err != nil {
		return err
	}

	var data course.NewMaterial
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMaterial")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	mat, err := api.svc.AddMaterial(ctx.Request().Context(), crs.ID, data)
	if err != nil {
		return errors.Wrap(err, "adding material")
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"material": mat})
}

func (api *courseApi) destroyMaterial(ctx echo.Context) error {
	_, crs, err := api.getEditableCourse(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteMaterial(ctx.Request().Context(), crs.ID, ctx.Param("materialId")); err != nil {
		return errors.Wrap(err, "deleting material")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) tests(ctx echo.Context) error {
	usr, crs, err := api.getViewableContent(ctx)
	if err != nil {
		return err
	}

	tests, err := api.svc.Tests(ctx.Request().Context(), crs.ID)
	if err != nil {
		return errors.Wrap(err, "querying tests")
	}

	// answers are only shown to the people who can edit the course
	if permission.CanEditCourse(usr, crs) {
		if tests == nil {
			tests = []course.Test{}
		}
		return ctx.JSON(http.StatusOK, echo.Map{"tests": tests})
	}
	public := make([]course.PublicTest, 0, len(tests))
	for _, tst := range tests {
		public = append(public, tst.Public())
	}
	return ctx.JSON(http.StatusOK, echo.Map{"tests": public})
}

func (api *courseApi) addTest(ctx echo.Context) error {
	_, crs, err := api.getEditableCourse(ctx)
	if err != nil {
		return err
	}

	var data course.NewTest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	tst, err := api.svc.AddTest(ctx.Request().Context(), crs.ID, data)
	if err != nil {
		return errors.Wrap(err, "adding test")
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"test": tst})
}

func (api *courseApi) retrieveTest(ctx echo.Context) error {
	usr, crs, err := api.getViewableContent(ctx)
	if err != nil {
		return err
	}

	tst, err := api.svc.GetTest(ctx.Request().Context(), crs.ID, ctx.Param("testId"))
	if err != nil {
		return errors.Wrap(err, "finding test by ID")
	}
	if permission.CanEditCourse(usr, crs) {
		return ctx.JSON(http.StatusOK, echo.Map{"test": tst})
	}
	return ctx.JSON(http.StatusOK, echo.Map{"test": tst.Public()})
}

func (api *courseApi) destroyTest(ctx echo.Context) error {
	_, crs, err := api.getEditableCourse(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteTest(ctx.Request().Context(), crs.ID, ctx.Param("testId")); err != nil {
		return errors.Wrap(err, "deleting test")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// submitTest scores the answers of an enrolled user & records the result in the gradebook.
func (api *courseApi) submitTest(ctx echo.Context) error {
	usr, crs, err := api.getCourse(ctx)
	if err != nil {
		return err
	}
	enrolled, err := api.enrollmentSvc.IsEnrolled(ctx.Request().Context(), usr.ID, crs.ID)
	if err != nil {
		return errors.Wrap(err, "checking enrollment")
	}
	if !enrolled {
		return errHttpForbidden
	}

	tst, err := api.svc.GetTest(ctx.Request().Context(), crs.ID, ctx.Param("testId"))
	if err != nil {
		return errors.Wrap(err, "finding test by ID")
	}

	var data course.Submission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Submission")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	res := tst.Score(data)
	grd, err := api.gradeSvc.Record(ctx.Request().Context(), usr, tst, res)
	if err != nil {
		return errors.Wrap(err, "recording grade")
	}
	return ctx.JSON(http.StatusCreated, SubmissionResponse{Result: res, Grade: grd})
}

type SubmissionResponse struct {
	Result course.Result `json:"result"`
	Grade  grade.Grade   `json:"grade"`
}
