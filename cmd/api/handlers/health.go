package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/doitintl/hello/lighthouse/common"
	"github.com/doitintl/hello/lighthouse/framework/web"
)

type HealthResponse struct {
	Service  string `json:"service"`
	Revision string `json:"revision"`
}

func Health(ctx *gin.Context) error {
	return web.Respond(ctx, HealthResponse{common.Service, common.Revision}, http.StatusOK)
}
