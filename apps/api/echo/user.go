package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/coursehub/core"
	"github.com/trezcool/coursehub/core/permission"
	"github.com/trezcool/coursehub/core/user"
)

var canManageUsers = requirePermission(func(p permission.Permissions) bool { return p.CanManageUsers })

type userApi struct {
	svc      user.ServiceInterface
	auth     *authenticator
	validate *validator.Validate
}

func registerUserAPI(
	g *echo.Group,
	authed []echo.MiddlewareFunc,
	auth *authenticator,
	loginLimiter echo.MiddlewareFunc,
	deps ServerDeps,
) {
	api := userApi{
		svc:      deps.UserSvc,
		auth:     auth,
		validate: deps.Validate,
	}

	// un-authed endpoints
	g.POST("/auth/login", api.login, loginLimiter)

	g.POST("/auth/token-refresh", api.refreshToken, authed...)

	pg := g.Group("/user", authed...)
	pg.GET("/profile", api.profile)
	pg.PUT("/profile", api.updateProfile)
	pg.GET("/permissions", api.permissions)

	ug := g.Group("/users", authed...)
	ug.GET("", api.query, canManageUsers)
	ug.POST("", api.create, canManageUsers)
	ug.DELETE("", api.destroyMultiple, canManageUsers)
	ug.GET("/roles", api.queryRoles)

	// detail endpoints
	ug.GET("/:id", api.retrieve, selfOrAdminMiddleware(api.svc))
	ug.PUT("/:id", api.update, canManageUsers, selfOrAdminMiddleware(api.svc))
	ug.DELETE("/:id", api.destroy, canManageUsers, selfOrAdminMiddleware(api.svc))
}

// Handlers

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, claims, err := api.auth.authenticate(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	token, err := api.auth.generateToken(claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, User: usr})
}

func (api *userApi) refreshToken(ctx echo.Context) error {
	token, err := api.auth.refreshToken(ctx)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, TokenResponse{Token: token})
}

func (api *userApi) profile(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"user": usr})
}

func (api *userApi) updateProfile(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data user.UpdateProfile
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProfile")
	}
	if err := data.Validate(usr, api.validate); err != nil {
		return err
	}

	usr, err = api.svc.UpdateProfile(ctx.Request().Context(), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating profile")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"user": usr})
}

func (api *userApi) permissions(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, PermissionsResponse{Role: usr.Role, Permissions: permission.For(usr)})
}

func (api *userApi) create(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	usr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"user": usr})
}

func (api *userApi) query(ctx echo.Context) error {
	filter := &user.QueryFilter{
		Search:   ctx.QueryParam("search"),
		IsActive: queryBool(ctx, "is_active"),
	}
	for _, r := range queryList(ctx, "role") {
		filter.Roles = append(filter.Roles, user.Role(r))
	}
	filter.Clean()

	users, err := api.svc.Query(ctx.Request().Context(), filter, parseOrdering(ctx))
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	if users == nil {
		users = []user.User{}
	}
	return ctx.JSON(http.StatusOK, echo.Map{"users": users})
}

func (api *userApi) queryRoles(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"roles": user.Roles})
}

func (api *userApi) retrieve(ctx echo.Context) error {
	usr, err := getObjectUser(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"user": usr})
}

func (api *userApi) update(ctx echo.Context) error {
	usr, err := getObjectUser(ctx)
	if err != nil {
		return err
	}

	var data user.UpdateUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateUser")
	}
	if err := data.Validate(ctx.Request().Context(), usr, api.validate, api.svc); err != nil {
		return err
	}

	// admins cannot lock themselves out
	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if usr.ID == ctxUsr.ID && (data.Role != ctxUsr.Role || (data.IsActive != nil && !*data.IsActive)) {
		return core.NewValidationError(errors.New("you cannot change your own role or deactivate yourself"))
	}

	usr, err = api.svc.Update(ctx.Request().Context(), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating user")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"user": usr})
}

func (api *userApi) destroy(ctx echo.Context) error {
	usr, err := getObjectUser(ctx)
	if err != nil {
		return err
	}

	// Say No to Suicide! ctxUser cannot delete themselves
	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if usr.ID == ctxUsr.ID {
		return errHttpForbidden
	}

	if err := api.svc.Delete(ctx.Request().Context(), usr.ID); err != nil {
		return errors.Wrap(err, "deleting user")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *userApi) destroyMultiple(ctx echo.Context) error {
	ids := queryList(ctx, "id")
	if len(ids) == 0 {
		return ctx.NoContent(http.StatusNoContent)
	}

	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	for _, id := range ids {
		if id == ctxUsr.ID {
			return errHttpForbidden
		}
	}

	if err := api.svc.Delete(ctx.Request().Context(), ids...); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return ctx.NoContent(http.StatusNoContent)
}

const objectUserKey = "object"

// selfOrAdminMiddleware loads the user identified by the `id` path param.
// Non admins can only reach themselves; anyone else is reported as not found.
func selfOrAdminMiddleware(svc user.ServiceInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctxUsr, err := getContextUser(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context user")
			}

			id := ctx.Param("id")
			if id != ctxUsr.ID && !permission.For(ctxUsr).CanManageUsers {
				return errHttpNotFound
			}
			usr, err := svc.GetByID(ctx.Request().Context(), id)
			if err != nil {
				return errors.Wrap(err, "finding user by ID")
			}
			ctx.Set(objectUserKey, usr)
			return next(ctx)
		}
	}
}

func getObjectUser(ctx echo.Context) (user.User, error) {
	usr, ok := ctx.Get(objectUserKey).(user.User)
	if !ok {
		return user.User{}, errors.New("user object not found in echo.Context")
	}
	return usr, nil
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string    `json:"token"`
		User  user.User `json:"user"`
	}

	TokenResponse struct {
		Token string `json:"token"`
	}

	PermissionsResponse struct {
		Role        user.Role              `json:"role"`
		Permissions permission.Permissions `json:"permissions"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}
