package database

import (
	"context"
	"time"

	"gorm.io/gorm"

	"socialdex/src/datamodels"
	"socialdex/src/utils/errors"
)

const observationBatchSize = 500

type ObservationDatabase interface {
	WriteObservation(ctx context.Context, observation *datamodels.Observation) error
	// WriteObservations stores the batch in one transaction: all rows or none.
	WriteObservations(ctx context.Context, observations []datamodels.Observation) error
	NotifyObservationsWritten(ctx context.Context, recordedAt time.Time) error
	// ListAllObservations returns every observation ordered by (recorded_at, id).
	ListAllObservations(ctx context.Context) ([]datamodels.Observation, error)
	// LatestObservationPerAuthor maps author id to follower count for the
	// authors observed at the global max recorded_at. Duplicates resolve to the highest id.
	LatestObservationPerAuthor(ctx context.Context) (map[int64]int64, error)
}

func (d *databaseImplementation) WriteObservation(ctx context.Context, observation *datamodels.Observation) error {
	if err := d.gormDb.WithContext(ctx).Create(observation).Error; err != nil {
		return errors.Wrapf(err, "failed to write observation for author %d", observation.AuthorId)
	}
	return nil
}

func (d *databaseImplementation) WriteObservations(ctx context.Context, observations []datamodels.Observation) error {
	if len(observations) == 0 {
		return nil
	}
	err := d.gormDb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(observations, observationBatchSize).Error
	})
	if err != nil {
		return errors.Wrapf(err, "failed to write %d observations", len(observations))
	}
	return nil
}

// NotifyObservationsWritten tells listeners that a batch landed. No-op without postgres.
func (d *databaseImplementation) NotifyObservationsWritten(ctx context.Context, recordedAt time.Time) error {
	if d.driver != datamodels.DriverPostgres {
		return nil
	}
	return Notify(d.gormDb.WithContext(ctx), ObservationsChannel, recordedAt.UTC().Format(time.RFC3339))
}

func (d *databaseImplementation) ListAllObservations(ctx context.Context) ([]datamodels.Observation, error) {
	return listAllObservations(d.gormDb.WithContext(ctx))
}

func listAllObservations(tx *gorm.DB) ([]datamodels.Observation, error) {
	var observations []datamodels.Observation
	if err := tx.Order("recorded_at ASC, id ASC").Find(&observations).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list observations")
	}
	return observations, nil
}

func (d *databaseImplementation) LatestObservationPerAuthor(ctx context.Context) (map[int64]int64, error) {
	return latestObservationPerAuthor(d.gormDb.WithContext(ctx))
}

func latestObservationPerAuthor(tx *gorm.DB) (map[int64]int64, error) {
	var rows []datamodels.Observation
	err := tx.Raw(`SELECT id, author_id, followers_count, recorded_at
		FROM follower_history
		WHERE recorded_at = (SELECT MAX(recorded_at) FROM follower_history)
		ORDER BY author_id ASC, id ASC`).Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to read latest observations")
	}

	latest := make(map[int64]int64, len(rows))
	for _, row := range rows {
		// ascending id order, so the last write per author wins
		latest[row.AuthorId] = row.FollowersCount
	}
	return latest, nil
}
