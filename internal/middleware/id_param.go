package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/task-user-api/internal/errors"
	"github.com/yukikurage/task-user-api/internal/validation"
)

// RequireObjectID rejects requests whose :id path parameter is not an
// ObjectID hex string
func RequireObjectID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if !validation.IsObjectID(id) {
			apierrors.BadRequestWithDetails(c,
				fmt.Sprintf("Invalid params parameter: %q must be a valid id", "id"),
				[]gin.H{{"field": "id", "message": fmt.Sprintf("%q must be a valid id", "id")}},
			)
			return
		}
		c.Next()
	}
}
