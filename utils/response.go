package utils

import "github.com/gin-gonic/gin"

// The SPA consumes plain JSON bodies (raw arrays and objects), so
// errors are the only enveloped shape: {"message": "..."}.

// Message writes a {"message": ...} body with the given status code.
func Message(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{"message": message})
}

// ServerError logs the cause and reports a generic 500. Upstream and
// persistence failures are never retried and never leak details.
func ServerError(ctx *gin.Context, cause error, context string) {
	if Sugar != nil {
		Sugar.Errorf("%s: %v", context, cause)
	}
	Message(ctx, 500, "internal server error")
}
