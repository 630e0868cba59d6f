package metrics

import (
	"context"
	"log/slog"

	"cloud.google.com/go/storage"

	"socialdex/src/database"
	"socialdex/src/datamodels"
	"socialdex/src/utils/errors"
)

// IndexWriter publishes a finished index build somewhere.
type IndexWriter interface {
	Write(ctx context.Context, result *datamodels.IndexResult) error
	// Close cleans up any resources
	Close() error
}

// BuildIndexWriter assembles the writers enabled in the output config.
// The bucket writer uploads what the file and plot writers produced, so it goes last.
func BuildIndexWriter(ctx context.Context, config *datamodels.SocialdexConfig, db database.IndexRunDatabase) (*MultiIndexWriter, error) {
	if config == nil {
		return nil, errors.New("config is nil")
	}
	output := config.OutputConfig
	writers := []IndexWriter{}
	files := []string{}

	if output.FileWriter {
		fileWriter, err := NewFileIndexWriter(output.Dir, output.Title)
		if err != nil {
			return nil, err
		}
		writers = append(writers, fileWriter)
		files = append(files, fileWriter.Files()...)
	}
	if output.PlotWriter {
		plotWriter, err := NewPlotIndexWriter(output.Dir, output.Title).
			WithSize(output.ChartWidthIn, output.ChartHeightIn).
			Build()
		if err != nil {
			return nil, err
		}
		writers = append(writers, plotWriter)
		files = append(files, plotWriter.Filename())
	}
	if output.DBWriter {
		if db == nil {
			slog.Warn("DB index writer enabled without a database, skipping")
		} else {
			writers = append(writers, NewDBIndexWriter(db))
		}
	}
	writers = append(writers, NewPrometheusIndexWriter())
	if output.BucketWriter {
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create storage client")
		}
		writers = append(writers, NewBucketIndexWriter(client, config.StorageConfig.Bucket, config.StorageConfig.Prefix, files))
	}

	slog.Info("Built index writer", "writers", len(writers))
	return NewMultiIndexWriter(writers...), nil
}
