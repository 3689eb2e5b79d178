package mid

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/doitintl/hello/lighthouse/framework/web"
	"github.com/doitintl/hello/lighthouse/internal"
	"github.com/doitintl/hello/lighthouse/logger"
)

const (
	healthCheckExcludePath = "/health"

	outcomeLabel = "lighthouse_outcome"
)

// Logger writes the start and completion of each request through the request
// logger and labels the entry with the dispatch outcome.
func Logger() web.Middleware {
	f := func(before web.Handler) web.Handler {
		h := func(ctx *gin.Context) error {
			if ctx.Request.URL.Path == healthCheckExcludePath {
				return before(ctx)
			}

			v, ok := internal.DataFromContext(ctx)
			if !ok {
				return web.NewShutdownError("web value missing from context")
			}

			log := logger.FromContext(ctx)

			log.Infof("started: %s %s -> %s", ctx.Request.Method, ctx.Request.URL.Path, ctx.Request.RemoteAddr)

			err := before(ctx)

			if err != nil {
				log.Errorf("request failed: %s", err)
			} else if v.StatusCode >= http.StatusBadRequest || v.StatusCode == 0 {
				lastErr := ctx.Errors.Last()
				if lastErr != nil {
					log.Errorf("Request fails %s", lastErr)
				}
			}

			if v.Outcome != "" {
				log.SetLabel(outcomeLabel, v.Outcome)
			}

			log.Infof("completed: %s %s -> %s (%d) (%s)",
				ctx.Request.Method, ctx.Request.URL.Path, ctx.Request.RemoteAddr,
				v.StatusCode, time.Since(v.Now),
			)

			return err
		}

		return h
	}

	return f
}
