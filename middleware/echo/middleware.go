package echomw

import (
	"net/http"

	"github.com/labstack/echo/v4"
	govalid "github.com/reoring/govalid"
	"github.com/reoring/govalid/middleware"
)

// ValidateJSON binds request JSON into T and validates it under the given
// groups, storing the validated value in context on success, or returning
// 400 with a violations payload when validation fails.
func ValidateJSON[T any](v *govalid.Validator, groups ...govalid.Group) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var body T
			if err := c.Bind(&body); err != nil {
				return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
			}
			vs, err := v.Validate(c.Request().Context(), &body, groups...)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, map[string]any{"error": err.Error()})
			}
			if len(vs) > 0 {
				return c.JSON(http.StatusBadRequest, middleware.ErrorPayload(vs))
			}
			ctx := middleware.ContextWithValidated(c.Request().Context(), body)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// GetValidated fetches the validated T from echo.Context.
func GetValidated[T any](c echo.Context) (T, bool) {
	return middleware.ValidatedFromContext[T](c.Request().Context())
}
