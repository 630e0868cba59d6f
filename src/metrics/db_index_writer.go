package metrics

import (
	"context"
	"encoding/json"

	"socialdex/src/database"
	"socialdex/src/datamodels"
	"socialdex/src/utils/errors"
)

// DBIndexWriter records each published build in index_runs.
type DBIndexWriter struct {
	db database.IndexRunDatabase
}

func NewDBIndexWriter(db database.IndexRunDatabase) *DBIndexWriter {
	return &DBIndexWriter{
		db: db,
	}
}

func (w *DBIndexWriter) Write(ctx context.Context, result *datamodels.IndexResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return errors.Wrap(err, "failed to marshal index result")
	}
	return w.db.WriteIndexRun(ctx, datamodels.IndexRun{
		RunId:      result.RunId,
		BuiltAt:    result.BuiltAt,
		IndexCount: len(result.Indices),
		PointCount: result.PointCount(),
		Payload:    payload,
	})
}

func (w *DBIndexWriter) Close() error {
	return nil
}
