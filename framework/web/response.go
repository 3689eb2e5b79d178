package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/doitintl/hello/lighthouse/internal"
)

// Respond converts a Go value to JSON and sends it to the client with the corresponded status code.
func Respond(ctx *gin.Context, data interface{}, statusCode int) error {
	v, ok := internal.DataFromContext(ctx)
	if ok {
		v.StatusCode = statusCode
	}

	// If there is nothing to marshal then set status code and return.
	if data == nil || statusCode == http.StatusNoContent {
		ctx.Status(statusCode)
		return nil
	}

	ctx.JSON(statusCode, data)

	return nil
}

// RespondError sends an error response back to the client. Errors that are
// not request errors are answered with a generic 500 body.
func RespondError(ctx *gin.Context, err error) error {
	status := StatusCode(err)

	msg := http.StatusText(http.StatusInternalServerError)
	if webErr, ok := err.(*Error); ok {
		msg = webErr.Err.Error()
	}

	return Respond(ctx, ErrorResponse{Error: msg}, status)
}
