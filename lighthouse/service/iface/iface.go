package iface

import (
	"context"

	"github.com/doitintl/hello/lighthouse/lighthouse/domain"
)

//go:generate mockery --name Dispatcher --output ./mocks
type Dispatcher interface {
	Handle(ctx context.Context, data []byte) (domain.Outcome, error)
}
