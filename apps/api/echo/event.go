package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/coursehub/core"
	"github.com/trezcool/coursehub/core/calendar"
	"github.com/trezcool/coursehub/core/course"
	"github.com/trezcool/coursehub/core/enrollment"
	"github.com/trezcool/coursehub/core/permission"
	"github.com/trezcool/coursehub/core/user"
)

type eventApi struct {
	svc           calendar.ServiceInterface
	courseSvc     course.ServiceInterface
	enrollmentSvc enrollment.ServiceInterface
	validate      *validator.Validate
}

func registerEventAPI(g *echo.Group, authed []echo.MiddlewareFunc, deps ServerDeps) {
	api := eventApi{
		svc:           deps.EventSvc,
		courseSvc:     deps.CourseSvc,
		enrollmentSvc: deps.EnrollmentSvc,
		validate:      deps.Validate,
	}

	eg := g.Group("/events", authed...)
	eg.GET("", api.query)
	eg.POST("", api.create)
	eg.GET("/:id", api.retrieve)
	eg.PUT("/:id", api.update)
	eg.DELETE("/:id", api.destroy)
}

// audience returns the events usr can see: their own plus those of the courses they teach
// or are enrolled in. nil means every event.
func (api *eventApi) audience(ctx echo.Context, usr user.User) (*calendar.Audience, error) {
	if seesEverything(usr) {
		return nil, nil
	}
	taught, err := taughtCourseIDs(ctx.Request().Context(), api.courseSvc, usr)
	if err != nil {
		return nil, err
	}
	enrolled, err := enrolledCourseIDs(ctx.Request().Context(), api.enrollmentSvc, usr)
	if err != nil {
		return nil, err
	}
	return &calendar.Audience{UserID: usr.ID, CourseIDs: append(taught, enrolled...)}, nil
}

// getEvent returns the context user & the event identified by the `id` path param.
// Events outside the user's audience are reported as not found.
func (api *eventApi) getEvent(ctx echo.Context) (user.User, calendar.Event, error) {
	usr, err := getContextUser(ctx)
	if err != nil {
		return user.User{}, calendar.Event{}, errors.Wrap(err, "getting context user")
	}
	evt, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return user.User{}, calendar.Event{}, errors.Wrap(err, "finding event by ID")
	}
	aud, err := api.audience(ctx, usr)
	if err != nil {
		return user.User{}, calendar.Event{}, err
	}
	if aud != nil && !aud.Includes(evt) {
		return user.User{}, calendar.Event{}, calendar.ErrNotFound
	}
	return usr, evt, nil
}

// Handlers

func (api *eventApi) query(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	filter := &calendar.QueryFilter{
		CourseID: ctx.QueryParam("course_id"),
		From:     queryTime(ctx, "from"),
		To:       queryTimeUntil(ctx, "to"),
	}
	for _, t := range queryList(ctx, "type") {
		filter.Types = append(filter.Types, calendar.EventType(t))
	}
	if filter.Audience, err = api.audience(ctx, usr); err != nil {
		return err
	}

	events, err := api.svc.Query(ctx.Request().Context(), filter, parseOrdering(ctx))
	if err != nil {
		return errors.Wrap(err, "querying events")
	}
	if events == nil {
		events = []calendar.Event{}
	}
	return ctx.JSON(http.StatusOK, echo.Map{"events": events})
}

func (api *eventApi) create(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data calendar.NewEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEvent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	// course events are published by the people who run the course
	if data.CourseID != "" {
		crs, err := api.courseSvc.GetByID(ctx.Request().Context(), data.CourseID)
		if err != nil {
			if errors.Is(err, course.ErrNotFound) {
				return core.NewValidationError(nil, core.FieldError{Field: "course_id", Error: "unknown course"})
			}
			return errors.Wrap(err, "finding course by ID")
		}
		if !(permission.CanEditCourse(usr, crs) || permission.For(usr).CanManageAllEvents) {
			return errHttpForbidden
		}
	}

	evt, err := api.svc.Create(ctx.Request().Context(), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating event")
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"event": evt})
}

func (api *eventApi) retrieve(ctx echo.Context) error {
	_, evt, err := api.getEvent(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"event": evt})
}

func (api *eventApi) update(ctx echo.Context) error {
	usr, evt, err := api.getEvent(ctx)
	if err != nil {
		return err
	}
	if !permission.CanManageEvent(usr, evt) {
		return errHttpForbidden
	}

	var data calendar.UpdateEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateEvent")
	}
	if err := data.Validate(evt, api.validate); err != nil {
		return err
	}

	evt, err = api.svc.Update(ctx.Request().Context(), evt.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating event")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"event": evt})
}

func (api *eventApi) destroy(ctx echo.Context) error {
	usr, evt, err := api.getEvent(ctx)
	if err != nil {
		return err
	}
	if !permission.CanManageEvent(usr, evt) {
		return errHttpForbidden
	}
	if err := api.svc.Delete(ctx.Request().Context(), evt.ID); err != nil {
		return errors.Wrap(err, "deleting event")
	}
	return ctx.NoContent(http.StatusNoContent)
}
