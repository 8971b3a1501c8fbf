package ginmw

import (
	"net/http"

	"github.com/gin-gonic/gin"
	govalid "github.com/reoring/govalid"
	"github.com/reoring/govalid/middleware"
)

// ValidateJSON binds the request body into T and validates it under the
// given groups, storing the validated value in the context on success. On
// violations it returns 400 with a violations payload; taxonomy errors
// (bad groups, evaluation defects) return 500.
func ValidateJSON[T any](v *govalid.Validator, groups ...govalid.Group) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body T
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			c.Abort()
			return
		}
		vs, err := v.Validate(c.Request.Context(), &body, groups...)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			c.Abort()
			return
		}
		if len(vs) > 0 {
			c.JSON(http.StatusBadRequest, middleware.ErrorPayload(vs))
			c.Abort()
			return
		}
		c.Request = c.Request.WithContext(middleware.ContextWithValidated(c.Request.Context(), body))
		c.Next()
	}
}

// GetValidated fetches the validated T from gin.Context.
func GetValidated[T any](c *gin.Context) (T, bool) {
	return middleware.ValidatedFromContext[T](c.Request.Context())
}
