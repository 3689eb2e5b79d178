package errorreporting

import (
	"context"
	"net/http"

	"cloud.google.com/go/errorreporting"
	"github.com/gin-gonic/gin"

	"github.com/doitintl/hello/lighthouse/common"
)

// Reporter sends errors to Cloud Error Reporting. A nil Reporter is valid and
// drops every report, which is what runs on localhost and in tests.
type Reporter struct {
	client *errorreporting.Client
}

type Metadata struct {
	Req   *http.Request
	Stack []byte
}

// NewReporter creates a Reporter for the running service revision. It returns
// a nil Reporter when running on localhost.
func NewReporter(ctx context.Context, projectID string) (*Reporter, error) {
	if common.IsLocalhost {
		return nil, nil
	}

	client, err := errorreporting.NewClient(ctx, projectID, errorreporting.Config{
		ServiceName:    common.Service,
		ServiceVersion: common.Revision,
	})
	if err != nil {
		return nil, err
	}

	return &Reporter{client}, nil
}

func (r *Reporter) Report(err error, md *Metadata) {
	if r == nil || err == nil {
		return
	}

	e := errorreporting.Entry{
		Error: err,
	}

	if md != nil {
		e.Req = md.Req
		e.Stack = md.Stack
	}

	r.client.Report(e)
}

func (r *Reporter) ReportRequestError(ctx *gin.Context, err error) {
	r.Report(err, &Metadata{
		Req: ctx.Request,
	})
}

// Close flushes pending reports.
func (r *Reporter) Close() error {
	if r == nil {
		return nil
	}

	return r.client.Close()
}
