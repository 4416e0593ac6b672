package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/coursehub/core/dashboard"
)

type dashboardApi struct {
	svc *dashboard.Service
}

func registerDashboardAPI(g *echo.Group, authed []echo.MiddlewareFunc, deps ServerDeps) {
	api := dashboardApi{svc: deps.DashboardSvc}
	g.GET("/dashboard", api.stats, authed...)
}

func (api *dashboardApi) stats(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	stats, err := api.svc.For(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "computing dashboard stats")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"stats": stats})
}
