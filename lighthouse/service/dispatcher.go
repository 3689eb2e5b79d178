package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/doitintl/hello/lighthouse/config"
	"github.com/doitintl/hello/lighthouse/lighthouse/dal"
	"github.com/doitintl/hello/lighthouse/lighthouse/domain"
	"github.com/doitintl/hello/lighthouse/lighthouse/runner"
	"github.com/doitintl/hello/lighthouse/logger"
)

// NoValidMessage is logged, verbatim, for payloads matching no keyword or target.
const NoValidMessage = "No valid message found!"

var (
	ErrPublish   = errors.New("failed to publish lighthouse trigger")
	ErrLocalFile = errors.New("failed to write local report file")
	ErrUpload    = errors.New("failed to upload lighthouse report")
	ErrLoad      = errors.New("failed to load lighthouse report")
)

type Dispatcher struct {
	loggerProvider logger.Provider
	cfg            *config.Config
	targets        []domain.Target
	publisher      dal.TopicPublisher
	storage        dal.ReportStorage
	loader         dal.ReportLoader
	runner         runner.Runner
	fs             afero.Fs
	now            func() time.Time
}

func NewDispatcher(
	log logger.Provider,
	cfg *config.Config,
	publisher dal.TopicPublisher,
	storage dal.ReportStorage,
	loader dal.ReportLoader,
	auditRunner runner.Runner,
	fs afero.Fs,
) *Dispatcher {
	targets := make([]domain.Target, 0, len(cfg.Source))
	for _, s := range cfg.Source {
		targets = append(targets, domain.Target{
			ID:         s.ID,
			URL:        s.URL,
			FormFactor: cfg.FormFactor(s),
		})
	}

	return &Dispatcher{
		loggerProvider: log,
		cfg:            cfg,
		targets:        targets,
		publisher:      publisher,
		storage:        storage,
		loader:         loader,
		runner:         auditRunner,
		fs:             fs,
		now:            time.Now,
	}
}

// Handle dispatches one decoded message payload. Invalid payloads are logged
// and reported as OutcomeLoggedError with a nil error; only downstream
// failures return an error.
func (d *Dispatcher) Handle(ctx context.Context, data []byte) (domain.Outcome, error) {
	l := d.loggerProvider(ctx)

	msg := domain.Classify(string(data), d.targets)

	switch msg.Kind {
	case domain.FanOutMessage:
		return domain.OutcomeOK, d.FanOut(ctx)
	case domain.TargetMessage:
		return domain.OutcomeOK, d.RunTarget(ctx, *msg.Target)
	default:
		l.Error(NoValidMessage)
		return domain.OutcomeLoggedError, nil
	}
}

// FanOut publishes one trigger per target, in configured order. Publishes
// already sent are not retracted when a later one fails.
func (d *Dispatcher) FanOut(ctx context.Context) error {
	l := d.loggerProvider(ctx)

	results := make([]dal.PublishResult, 0, len(d.targets))
	for _, t := range d.targets {
		results = append(results, d.publisher.Publish(ctx, d.cfg.PubsubTopicID, []byte(t.ID)))
	}

	g, gctx := errgroup.WithContext(ctx)

	for i, res := range results {
		res := res
		id := d.targets[i].ID
		g.Go(func() error {
			if _, err := res.Get(gctx); err != nil {
				return fmt.Errorf("%w: %s: %w", ErrPublish, id, err)
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	l.Infof("published %d lighthouse triggers to %s", len(results), d.cfg.PubsubTopicID)

	return nil
}

// localPath is unique per run so that concurrent runs of one target do not
// share a file.
func (d *Dispatcher) localPath(target domain.Target, at time.Time) string {
	return filepath.Join(d.cfg.LocalDir, fmt.Sprintf("%s_%d.json", target.ID, at.UnixNano()))
}

// RunTarget audits a target, then writes the local report file, uploads
// every artifact and loads the local file, in that order.
func (d *Dispatcher) RunTarget(ctx context.Context, target domain.Target) error {
	l := d.loggerProvider(ctx)
	l.SetLabel("lighthouse_target", target.ID)

	l.Infof("running lighthouse for %s (%s)", target.ID, target.URL)

	report, err := d.runner.Run(ctx, target)
	if err != nil {
		return err
	}

	if report == nil || report.Result == nil {
		return fmt.Errorf("%w: %s: empty result", runner.ErrAuditFailed, target.ID)
	}

	startedAt := d.now()

	rows, err := domain.NDJSON(domain.NewReportRow(target.ID, report.Result))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLocalFile, err)
	}

	path := d.localPath(target, startedAt)
	if err := afero.WriteFile(d.fs, path, rows, 0o644); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrLocalFile, path, err)
	}

	defer func() {
		if err := d.fs.Remove(path); err != nil {
			l.Warningf("failed to remove local report file %s: %s", path, err)
		}
	}()

	for _, a := range report.Artifacts {
		if err := d.storage.Upload(ctx, a.ObjectPath(target.ID, startedAt), a.ContentType(), a.Content); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrUpload, target.ID, err)
		}
	}

	if err := d.loader.Load(ctx, d.cfg.DatasetID, d.cfg.TableID, path); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrLoad, target.ID, err)
	}

	l.Infof("lighthouse report for %s stored and loaded into %s.%s", target.ID, d.cfg.DatasetID, d.cfg.TableID)

	return nil
}
