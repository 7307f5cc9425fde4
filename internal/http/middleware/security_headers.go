package middleware

import "github.com/gin-gonic/gin"

// SecurityHeaders adds security headers. Resources stay loadable cross-origin
// so processed images can be embedded by any page.
func SecurityHeaders() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Header("X-Frame-Options", "DENY")
		ctx.Header("X-Content-Type-Options", "nosniff")
		ctx.Header("Referrer-Policy", "no-referrer")
		ctx.Header("Cross-Origin-Resource-Policy", "cross-origin")
		ctx.Next()
	}
}
