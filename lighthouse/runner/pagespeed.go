package runner

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"google.golang.org/api/option"
	"google.golang.org/api/pagespeedonline/v5"

	"github.com/doitintl/hello/lighthouse/config"
	"github.com/doitintl/hello/lighthouse/lighthouse/domain"
)

// PageSpeedRunner audits a target remotely through the PageSpeed Insights
// API, for deployments without a chrome binary.
type PageSpeedRunner struct {
	service *pagespeedonline.Service
	flags   config.LighthouseFlags
}

func NewPageSpeedRunner(ctx context.Context, flags config.LighthouseFlags, apiKey string, opts ...option.ClientOption) (*PageSpeedRunner, error) {
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}

	service, err := pagespeedonline.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return &PageSpeedRunner{
		service: service,
		flags:   flags,
	}, nil
}

func pageSpeedCategory(category string) string {
	return strings.ToUpper(strings.ReplaceAll(category, "-", "_"))
}

func (r *PageSpeedRunner) Run(ctx context.Context, target domain.Target) (*domain.Report, error) {
	call := r.service.Pagespeedapi.Runpagespeed(target.URL).Context(ctx)

	if ff := formFactor(target, r.flags); ff != "" {
		call = call.Strategy(strings.ToUpper(ff))
	}

	if len(r.flags.OnlyCategories) > 0 {
		categories := make([]string, 0, len(r.flags.OnlyCategories))
		for _, c := range r.flags.OnlyCategories {
			categories = append(categories, pageSpeedCategory(c))
		}

		call = call.Category(categories...)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrAuditFailed, target.ID, err)
	}

	if resp.LighthouseResult == nil {
		return nil, fmt.Errorf("%w: %s: empty lighthouse result", ErrAuditFailed, target.ID)
	}

	raw, err := json.Marshal(resp.LighthouseResult)
	if err != nil {
		return nil, err
	}

	result, err := domain.ParseResult(raw)
	if err != nil {
		return nil, err
	}

	artifacts := make([]domain.Artifact, 0, len(r.flags.Output))

	for _, format := range r.flags.Output {
		content := raw

		switch format {
		case domain.FormatCSV:
			if content, err = renderCSV(result); err != nil {
				return nil, err
			}
		case domain.FormatHTML:
			content = renderHTML(result)
		}

		artifacts = append(artifacts, domain.Artifact{Format: format, Content: content})
	}

	return &domain.Report{
		Artifacts: artifacts,
		Result:    result,
	}, nil
}
