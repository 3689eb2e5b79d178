package dal

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/spf13/afero"

	"github.com/doitintl/hello/lighthouse/lighthouse/domain"
)

const loadJobIDPrefix = "lighthouse_report_load"

// ReportTable appends newline delimited report rows from a local file.
type ReportTable struct {
	client *bigquery.Client
	fs     afero.Fs
}

func NewReportTable(client *bigquery.Client, fs afero.Fs) *ReportTable {
	return &ReportTable{
		client: client,
		fs:     fs,
	}
}

func (t *ReportTable) Load(ctx context.Context, datasetID, tableID, localPath string) error {
	f, err := t.fs.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open report file %s: %w", localPath, err)
	}

	defer f.Close()

	schema, err := domain.ReportRowSchema()
	if err != nil {
		return fmt.Errorf("failed to infer report schema: %w", err)
	}

	source := bigquery.NewReaderSource(f)
	source.SourceFormat = bigquery.JSON
	source.Schema = schema
	source.IgnoreUnknownValues = true

	loader := t.client.Dataset(datasetID).Table(tableID).LoaderFrom(source)
	loader.WriteDisposition = bigquery.WriteAppend
	loader.CreateDisposition = bigquery.CreateIfNeeded
	loader.TimePartitioning = &bigquery.TimePartitioning{Type: bigquery.DayPartitioningType, Field: "fetch_time"}
	loader.JobIDConfig = bigquery.JobIDConfig{
		JobID:          loadJobIDPrefix,
		AddJobIDSuffix: true,
	}

	job, err := loader.Run(ctx)
	if err != nil {
		return fmt.Errorf("failed to run loader job: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("failed to wait loader job: %w", err)
	}

	if err := status.Err(); err != nil {
		return fmt.Errorf("error in job status: %w", err)
	}

	return nil
}
