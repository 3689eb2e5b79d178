package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/doitintl/hello/lighthouse/config"
	dalMocks "github.com/doitintl/hello/lighthouse/lighthouse/dal/mocks"
	"github.com/doitintl/hello/lighthouse/lighthouse/domain"
	"github.com/doitintl/hello/lighthouse/lighthouse/runner"
	runnerMocks "github.com/doitintl/hello/lighthouse/lighthouse/runner/mocks"
	"github.com/doitintl/hello/lighthouse/logger"
	loggerMocks "github.com/doitintl/hello/lighthouse/logger/mocks"
)

const (
	topicID  = "launch-lighthouse"
	localDir = "/tmp"
)

var (
	startedAt = time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	someErr   = errors.New("some error")
	score     = 0.91
)

func testConfig(ids ...string) *config.Config {
	cfg := &config.Config{
		PubsubTopicID: topicID,
		DatasetID:     "lighthouse",
		TableID:       "reports",
		LocalDir:      localDir,
		GCS:           config.GCS{BucketName: "lighthouse-reports"},
		LighthouseFlags: config.LighthouseFlags{
			Output: []string{"html", "csv", "json"},
		},
	}

	for _, id := range ids {
		cfg.Source = append(cfg.Source, config.Source{ID: id, URL: "https://" + id + ".example.com/"})
	}

	return cfg
}

func testReport() *domain.Report {
	return &domain.Report{
		Artifacts: []domain.Artifact{
			{Format: domain.FormatHTML, Content: []byte("<html></html>")},
			{Format: domain.FormatCSV, Content: []byte("a,b\n")},
			{Format: domain.FormatJSON, Content: []byte(`{}`)},
		},
		Result: &domain.Result{
			RequestedURL: "https://a.example.com/",
			FetchTime:    startedAt,
			Categories: map[string]domain.Category{
				"performance": {ID: "performance", Score: &score},
			},
		},
	}
}

type fields struct {
	log       loggerMocks.ILogger
	publisher dalMocks.TopicPublisher
	storage   dalMocks.ReportStorage
	loader    dalMocks.ReportLoader
	runner    runnerMocks.Runner
	fs        afero.Fs
}

func newDispatcher(f *fields, cfg *config.Config) *Dispatcher {
	f.fs = afero.NewMemMapFs()

	d := NewDispatcher(
		func(ctx context.Context) logger.ILogger { return &f.log },
		cfg,
		&f.publisher,
		&f.storage,
		&f.loader,
		&f.runner,
		f.fs,
	)
	d.now = func() time.Time { return startedAt }

	return d
}

func okResult() *dalMocks.PublishResult {
	r := &dalMocks.PublishResult{}
	r.On("Get", mock.Anything).Return("server-id", nil)

	return r
}

func TestDispatcher_HandleInvalidMessage(t *testing.T) {
	ctx := context.Background()

	f := &fields{}
	d := newDispatcher(f, testConfig("A", "B"))

	f.log.On("Error", []interface{}{NoValidMessage}).Twice()

	for i := 0; i < 2; i++ {
		outcome, err := d.Handle(ctx, []byte("invalid_message"))

		assert.NoError(t, err)
		assert.Equal(t, domain.OutcomeLoggedError, outcome)
	}

	f.log.AssertExpectations(t)
	f.log.AssertNumberOfCalls(t, "Error", 2)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	f.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.loader.AssertNotCalled(t, "Load", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)

	files, err := afero.ReadDir(f.fs, localDir)
	assert.Error(t, err)
	assert.Empty(t, files)
}

func TestDispatcher_HandleFanOut(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		ids  []string
	}{
		{name: "no targets", ids: nil},
		{name: "one target", ids: []string{"A"}},
		{name: "two targets", ids: []string{"A", "B"}},
		{name: "many targets", ids: []string{"A", "B", "C", "D", "E"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fields{}
			d := newDispatcher(f, testConfig(tt.ids...))

			f.log.On("Infof", mock.Anything, mock.Anything).Maybe()

			for _, id := range tt.ids {
				f.publisher.On("Publish", ctx, topicID, []byte(id)).Return(okResult()).Once()
			}

			outcome, err := d.Handle(ctx, []byte("all"))

			require.NoError(t, err)
			assert.Equal(t, domain.OutcomeOK, outcome)
			f.publisher.AssertNumberOfCalls(t, "Publish", len(tt.ids))

			for i, id := range tt.ids {
				call := f.publisher.Calls[i]
				assert.Equal(t, topicID, call.Arguments.String(1))
				assert.Equal(t, []byte(id), call.Arguments.Get(2))
			}

			f.runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
			f.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestDispatcher_HandleFanOutPartialFailure(t *testing.T) {
	ctx := context.Background()

	f := &fields{}
	d := newDispatcher(f, testConfig("A", "B"))

	failed := &dalMocks.PublishResult{}
	failed.On("Get", mock.Anything).Return("", someErr)

	f.publisher.On("Publish", ctx, topicID, []byte("A")).Return(okResult()).Once()
	f.publisher.On("Publish", ctx, topicID, []byte("B")).Return(failed).Once()

	outcome, err := d.Handle(ctx, []byte("all"))

	assert.ErrorIs(t, err, ErrPublish)
	assert.ErrorIs(t, err, someErr)
	assert.Equal(t, domain.OutcomeOK, outcome)
	f.publisher.AssertNumberOfCalls(t, "Publish", 2)
	f.log.AssertNotCalled(t, "Error", mock.Anything)
}

func TestDispatcher_HandleTarget(t *testing.T) {
	ctx := context.Background()

	f := &fields{}
	d := newDispatcher(f, testConfig("A", "B"))

	var steps []string

	f.log.On("SetLabel", "lighthouse_target", "A").Once()
	f.log.On("Infof", mock.Anything, mock.Anything).Maybe()

	f.runner.On("Run", ctx, domain.Target{ID: "A", URL: "https://A.example.com/"}).
		Run(func(args mock.Arguments) { steps = append(steps, "audit") }).
		Return(testReport(), nil).Once()

	f.storage.On("Upload", ctx, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			files, err := afero.ReadDir(f.fs, localDir)
			require.NoError(t, err)
			require.Len(t, files, 1)

			steps = append(steps, "upload")
		}).
		Return(nil).Times(3)

	f.loader.On("Load", ctx, "lighthouse", "reports", mock.Anything).
		Run(func(args mock.Arguments) {
			content, err := afero.ReadFile(f.fs, args.String(3))
			require.NoError(t, err)
			assert.Contains(t, string(content), `"site_id":"A"`)
			assert.Contains(t, string(content), `"performance":0.91`)

			steps = append(steps, "load")
		}).
		Return(nil).Once()

	outcome, err := d.Handle(ctx, []byte("A"))

	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeOK, outcome)
	assert.Equal(t, []string{"audit", "upload", "upload", "upload", "load"}, steps)

	f.storage.AssertNumberOfCalls(t, "Upload", 3)
	f.loader.AssertNumberOfCalls(t, "Load", 1)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)

	var paths, contentTypes []string
	for _, c := range f.storage.Calls {
		paths = append(paths, c.Arguments.String(1))
		contentTypes = append(contentTypes, c.Arguments.String(2))
	}

	assert.Equal(t, []string{
		"A/report_2024-05-01T10:30:00Z.html",
		"A/report_2024-05-01T10:30:00Z.csv",
		"A/report_2024-05-01T10:30:00Z.json",
	}, paths)
	assert.Equal(t, []string{"text/html", "text/csv", "application/json"}, contentTypes)

	files, err := afero.ReadDir(f.fs, localDir)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDispatcher_HandleTargetFailures(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		on      func(*fields)
		wantErr error
		assert  func(*testing.T, *fields)
	}{
		{
			name: "audit fails",
			on: func(f *fields) {
				f.runner.On("Run", ctx, mock.Anything).Return(nil, someErr).Once()
			},
			wantErr: someErr,
			assert: func(t *testing.T, f *fields) {
				f.storage.AssertNumberOfCalls(t, "Upload", 0)
				f.loader.AssertNumberOfCalls(t, "Load", 0)

				files, _ := afero.ReadDir(f.fs, localDir)
				assert.Empty(t, files)
			},
		},
		{
			name: "audit returns no result",
			on: func(f *fields) {
				f.runner.On("Run", ctx, mock.Anything).Return(&domain.Report{}, nil).Once()
			},
			wantErr: runner.ErrAuditFailed,
			assert: func(t *testing.T, f *fields) {
				f.storage.AssertNumberOfCalls(t, "Upload", 0)
				f.loader.AssertNumberOfCalls(t, "Load", 0)

				files, _ := afero.ReadDir(f.fs, localDir)
				assert.Empty(t, files)
			},
		},
		{
			name: "audit returns nil report",
			on: func(f *fields) {
				f.runner.On("Run", ctx, mock.Anything).Return(nil, nil).Once()
			},
			wantErr: runner.ErrAuditFailed,
			assert: func(t *testing.T, f *fields) {
				f.storage.AssertNumberOfCalls(t, "Upload", 0)
			},
		},
		{
			name: "upload fails",
			on: func(f *fields) {
				f.runner.On("Run", ctx, mock.Anything).Return(testReport(), nil).Once()
				f.storage.On("Upload", ctx, mock.Anything, mock.Anything, mock.Anything).Return(someErr).Once()
			},
			wantErr: ErrUpload,
			assert: func(t *testing.T, f *fields) {
				f.storage.AssertNumberOfCalls(t, "Upload", 1)
				f.loader.AssertNumberOfCalls(t, "Load", 0)
			},
		},
		{
			name: "load fails",
			on: func(f *fields) {
				f.runner.On("Run", ctx, mock.Anything).Return(testReport(), nil).Once()
				f.storage.On("Upload", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil).Times(3)
				f.loader.On("Load", ctx, "lighthouse", "reports", mock.Anything).Return(someErr).Once()
			},
			wantErr: ErrLoad,
			assert: func(t *testing.T, f *fields) {
				f.storage.AssertNumberOfCalls(t, "Upload", 3)
				f.loader.AssertNumberOfCalls(t, "Load", 1)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fields{}
			d := newDispatcher(f, testConfig("A"))

			f.log.On("SetLabel", mock.Anything, mock.Anything).Maybe()
			f.log.On("Infof", mock.Anything, mock.Anything).Maybe()

			if tt.on != nil {
				tt.on(f)
			}

			outcome, err := d.Handle(ctx, []byte("A"))

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, domain.OutcomeOK, outcome)
			f.log.AssertNotCalled(t, "Error", mock.Anything)

			if tt.assert != nil {
				tt.assert(t, f)
			}
		})
	}
}

type removeFailingFs struct {
	afero.Fs
}

func (fs removeFailingFs) Remove(name string) error {
	return errors.New("read-only file system")
}

func TestDispatcher_HandleTargetLogsRemoveFailure(t *testing.T) {
	ctx := context.Background()

	f := &fields{}
	d := newDispatcher(f, testConfig("A"))
	d.fs = removeFailingFs{f.fs}

	f.log.On("SetLabel", mock.Anything, mock.Anything).Maybe()
	f.log.On("Infof", mock.Anything, mock.Anything).Maybe()
	f.log.On("Warningf", "failed to remove local report file %s: %s", mock.Anything).Once()

	f.runner.On("Run", ctx, mock.Anything).Return(testReport(), nil).Once()
	f.storage.On("Upload", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil).Times(3)
	f.loader.On("Load", ctx, "lighthouse", "reports", mock.Anything).Return(nil).Once()

	outcome, err := d.Handle(ctx, []byte("A"))

	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeOK, outcome)
	f.log.AssertExpectations(t)

	files, err := afero.ReadDir(f.fs, localDir)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestNewDispatcherResolvesFormFactor(t *testing.T) {
	cfg := testConfig("A", "B")
	cfg.LighthouseFlags.FormFactor = "desktop"
	cfg.Source[1].FormFactor = "mobile"

	d := NewDispatcher(logger.FromContext, cfg, nil, nil, nil, nil, afero.NewMemMapFs())

	require.Len(t, d.targets, 2)
	assert.Equal(t, "desktop", d.targets[0].FormFactor)
	assert.Equal(t, "mobile", d.targets[1].FormFactor)
}
