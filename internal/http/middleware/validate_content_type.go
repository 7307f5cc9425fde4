package middleware

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/bg-remover/internal/models"
)

// ValidateContentType rejects request bodies whose media type is not in allowed.
// The check runs before any body is read.
func ValidateContentType(message string, allowed ...string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		mediaType, _, err := mime.ParseMediaType(ctx.GetHeader("Content-Type"))
		if err == nil {
			for _, a := range allowed {
				if mediaType == a {
					ctx.Next()
					return
				}
			}
		}

		ctx.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: message})
	}
}
