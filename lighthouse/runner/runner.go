package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/afero"

	"github.com/doitintl/hello/lighthouse/config"
	"github.com/doitintl/hello/lighthouse/lighthouse/domain"
)

var (
	ErrAuditFailed     = errors.New("lighthouse audit failed")
	ErrMissingJSON     = errors.New("lighthouse report has no json output")
	ErrUnknownEngine   = errors.New("unknown lighthouse engine")
	ErrMissingArtifact = errors.New("lighthouse output missing")
)

//go:generate mockery --name Runner --output ./mocks
type Runner interface {
	Run(ctx context.Context, target domain.Target) (*domain.Report, error)
}

// SecretAccessor returns the payload of a Secret Manager secret version.
type SecretAccessor func(ctx context.Context, name string) (string, error)

// New builds the engine named in the config.
func New(ctx context.Context, cfg *config.Config, fs afero.Fs, secrets SecretAccessor) (Runner, error) {
	switch cfg.Runner.Engine {
	case config.EngineCLI, "":
		return NewCLIRunner(cfg.Runner.Binary, cfg.LocalDir, cfg.LighthouseFlags, fs, nil), nil
	case config.EnginePageSpeed:
		key := cfg.Runner.APIKey
		if key == "" {
			var err error

			key, err = secrets(ctx, cfg.Runner.APIKeySecret)
			if err != nil {
				return nil, fmt.Errorf("failed to access pagespeed api key: %w", err)
			}
		}

		return NewPageSpeedRunner(ctx, cfg.LighthouseFlags, key)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEngine, cfg.Runner.Engine)
	}
}

// formFactor falls back to the global flag when the target has none.
func formFactor(target domain.Target, flags config.LighthouseFlags) string {
	if target.FormFactor != "" {
		return target.FormFactor
	}

	return flags.FormFactor
}

// resultFromArtifacts parses the json artifact of a report.
func resultFromArtifacts(artifacts []domain.Artifact) (*domain.Result, error) {
	for _, a := range artifacts {
		if a.Format == domain.FormatJSON {
			return domain.ParseResult(a.Content)
		}
	}

	return nil, ErrMissingJSON
}
