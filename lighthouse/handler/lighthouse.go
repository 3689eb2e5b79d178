package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/doitintl/hello/lighthouse/framework/web"
	"github.com/doitintl/hello/lighthouse/internal"
	"github.com/doitintl/hello/lighthouse/lighthouse/service/iface"
	"github.com/doitintl/hello/lighthouse/logger"
)

type Lighthouse struct {
	loggerProvider logger.Provider
	service        iface.Dispatcher
}

type MessageResponse struct {
	Outcome string `json:"outcome"`
}

func NewLighthouse(log logger.Provider, service iface.Dispatcher) *Lighthouse {
	return &Lighthouse{
		log,
		service,
	}
}

// HandlePushMessage receives one pubsub push delivery. Messages that match
// nothing are acknowledged with a 200, so pubsub does not redeliver them;
// downstream failures answer 500 and are redelivered.
func (h *Lighthouse) HandlePushMessage(ctx *gin.Context) error {
	data, err := extractDataFromMessage(ctx.Request.Body)
	if err != nil {
		return web.NewRequestError(err, http.StatusBadRequest)
	}

	h.loggerProvider(ctx).Infof("received lighthouse message %q", data)

	outcome, err := h.service.Handle(ctx, data)
	internal.SetOutcome(ctx, outcome.String())

	if err != nil {
		return web.NewRequestError(err, http.StatusInternalServerError)
	}

	return web.Respond(ctx, MessageResponse{outcome.String()}, http.StatusOK)
}
