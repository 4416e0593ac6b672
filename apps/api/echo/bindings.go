package echoapi

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/coursehub/core"
)

const orderingParam = "ordering"

func parseOrdering(ctx echo.Context) []core.Ordering {
	return core.ParseOrderings(ctx.QueryParam(orderingParam))
}

// queryList collects a query param given either repeated (?role=a&role=b) or comma separated (?role=a,b).
func queryList(ctx echo.Context, name string) []string {
	var values []string
	for _, raw := range ctx.QueryParams()[name] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
	}
	return values
}

// queryBool returns nil when the param is absent or not a boolean.
func queryBool(ctx echo.Context, name string) *bool {
	b, err := strconv.ParseBool(ctx.QueryParam(name))
	if err != nil {
		return nil
	}
	return &b
}

const dateLayout = "2006-01-02"

// queryTime parses RFC 3339 timestamps or plain dates (2006-01-02). Anything else is the zero time.
func queryTime(ctx echo.Context, name string) time.Time {
	t, _ := parseQueryTime(ctx.QueryParam(name))
	return t
}

// queryTimeUntil is queryTime for upper bounds: a plain date covers that whole day.
func queryTimeUntil(ctx echo.Context, name string) time.Time {
	t, dateOnly := parseQueryTime(ctx.QueryParam(name))
	if dateOnly {
		return t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return t
}

func parseQueryTime(raw string) (t time.Time, dateOnly bool) {
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), false
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}
