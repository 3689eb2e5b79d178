package logger

import "github.com/gin-gonic/gin"

//go:generate mockery --name ILogger --output ./mocks --unroll-variadic=false
type ILogger interface {
	Trace() string
	SetLabel(key, value string)
	End(ctx *gin.Context)
	Info(v ...interface{})
	Warning(v ...interface{})
	Error(v ...interface{})
	Infof(format string, v ...interface{})
	Warningf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
}
