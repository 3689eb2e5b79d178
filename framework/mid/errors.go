package mid

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/doitintl/hello/lighthouse/errorreporting"
	"github.com/doitintl/hello/lighthouse/framework/web"
	"github.com/doitintl/hello/lighthouse/internal"
	"github.com/doitintl/hello/lighthouse/logger"
)

// Errors handles errors coming out of the call chain. It detects normal
// application errors which are used to respond to the client in a uniform way.
// Server side failures are also sent to the reporter.
func Errors(reporter *errorreporting.Reporter) web.Middleware {
	f := func(before web.Handler) web.Handler {
		h := func(ctx *gin.Context) error {
			v, ok := internal.DataFromContext(ctx)
			if !ok {
				return web.NewShutdownError("web value missing from context")
			}

			log := logger.FromContext(ctx)

			if err := before(ctx); err != nil {
				log.Errorf("%s: ERROR: %v", v.TraceID, err)

				if web.StatusCode(err) >= http.StatusInternalServerError {
					reporter.ReportRequestError(ctx, err)
				}

				if err := web.RespondError(ctx, err); err != nil {
					return err
				}

				// If we receive the shutdown err we need to return it
				// back to the base handler to shutdown the service.
				if ok := web.IsShutdown(err); ok {
					return err
				}
			}

			return nil
		}

		return h
	}

	return f
}
