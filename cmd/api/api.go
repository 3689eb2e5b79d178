package api

import (
	"net/http"
	"os"

	"github.com/doitintl/hello/lighthouse/cmd/api/handlers"
	"github.com/doitintl/hello/lighthouse/errorreporting"
	"github.com/doitintl/hello/lighthouse/framework/mid"
	"github.com/doitintl/hello/lighthouse/framework/web"
	lighthouseHandler "github.com/doitintl/hello/lighthouse/lighthouse/handler"
	"github.com/doitintl/hello/lighthouse/lighthouse/service/iface"
	"github.com/doitintl/hello/lighthouse/logger"
)

// API constructs an api with the needed functionality.
type API struct {
	shutdown   chan os.Signal
	reporter   *errorreporting.Reporter
	dispatcher iface.Dispatcher
}

func NewAPI(shutdown chan os.Signal, reporter *errorreporting.Reporter, dispatcher iface.Dispatcher) *API {
	return &API{
		shutdown,
		reporter,
		dispatcher,
	}
}

// Build builds the api endpoints with the needed middlewares, and returns http.Handler interface.
func (a *API) Build() http.Handler {
	loggerProvider := logger.FromContext

	// Construct the web.App which holds all routes as well as common Middleware.
	app := web.NewApp(a.shutdown, mid.Logger(), mid.Errors(a.reporter), mid.Panics(a.reporter), mid.Sentry())

	lighthouse := lighthouseHandler.NewLighthouse(loggerProvider, a.dispatcher)

	app.Get("/health", handlers.Health)

	tasks := web.NewGroup(app, "/tasks")
	tasks.Post("/lighthouse", lighthouse.HandlePushMessage)

	return app
}
