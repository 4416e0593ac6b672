package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/coursehub/core"
	"github.com/trezcool/coursehub/core/chat"
	"github.com/trezcool/coursehub/core/course"
	"github.com/trezcool/coursehub/core/permission"
	"github.com/trezcool/coursehub/core/user"
)

type chatApi struct {
	svc       chat.ServiceInterface
	courseSvc course.ServiceInterface
	validate  *validator.Validate
}

func registerChatAPI(g *echo.Group, authed []echo.MiddlewareFunc, deps ServerDeps) {
	api := chatApi{svc: deps.ChatSvc, courseSvc: deps.CourseSvc, validate: deps.Validate}

	cg := g.Group("/chats", authed...)
	cg.GET("", api.query)
	cg.POST("", api.create)
	cg.GET("/:id", api.retrieve)
	cg.GET("/:id/messages", api.messages)
	cg.POST("/:id/messages", api.post)
}

func (api *chatApi) getChat(ctx echo.Context) (user.User, chat.Chat, error) {
	usr, err := getContextUser(ctx)
	if err != nil {
		return user.User{}, chat.Chat{}, errors.Wrap(err, "getting context user")
	}
	ch, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return user.User{}, chat.Chat{}, errors.Wrap(err, "finding chat by ID")
	}
	if !permission.CanAccessChat(usr, ch) {
		return user.User{}, chat.Chat{}, permission.ErrForbidden
	}
	return usr, ch, nil
}

// Handlers

func (api *chatApi) query(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	filter := &chat.QueryFilter{CourseID: ctx.QueryParam("course_id")}
	if permission.For(usr).CanViewAllChats {
		filter.ParticipantID = ctx.QueryParam("participant_id")
	} else {
		filter.ParticipantID = usr.ID
	}

	chats, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying chats")
	}
	if chats == nil {
		chats = []chat.Chat{}
	}
	return ctx.JSON(http.StatusOK, echo.Map{"chats": chats})
}

func (api *chatApi) create(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data chat.NewChat
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewChat")
	}
	if err := data.Validate(usr.ID, api.validate); err != nil {
		return err
	}
	if data.CourseID != "" {
		crs, err := api.courseSvc.GetByID(ctx.Request().Context(), data.CourseID)
		if err != nil && !errors.Is(err, course.ErrNotFound) {
			return errors.Wrap(err, "finding course by ID")
		}
		if err != nil || !permission.CanViewCourse(usr, crs) {
			return core.NewValidationError(nil, core.FieldError{Field: "course_id", Error: "unknown course"})
		}
	}

	ch, err := api.svc.Create(ctx.Request().Context(), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating chat")
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"chat": ch})
}

func (api *chatApi) retrieve(ctx echo.Context) error {
	_, ch, err := api.getChat(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"chat": ch})
}

func (api *chatApi) messages(ctx echo.Context) error {
	_, ch, err := api.getChat(ctx)
	if err != nil {
		return err
	}

	messages, err := api.svc.Messages(ctx.Request().Context(), ch.ID)
	if err != nil {
		return errors.Wrap(err, "querying messages")
	}
	if messages == nil {
		messages = []chat.Message{}
	}
	return ctx.JSON(http.StatusOK, echo.Map{"messages": messages})
}

func (api *chatApi) post(ctx echo.Context) error {
	usr, ch, err := api.getChat(ctx)
	if err != nil {
		return err
	}

	var data chat.NewMessage
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMessage")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	msg, err := api.svc.Post(ctx.Request().Context(), ch, usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "posting message")
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"message": msg})
}
