package database

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"socialdex/src/datamodels"
)

type SnapshotDatabase interface {
	// LoadSnapshot reads authors, tags and observations in one transaction.
	LoadSnapshot(ctx context.Context) (*datamodels.Snapshot, error)
}

func (d *databaseImplementation) LoadSnapshot(ctx context.Context) (*datamodels.Snapshot, error) {
	snapshot := &datamodels.Snapshot{TakenAt: time.Now().UTC()}

	err := d.gormDb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		authors, err := listAuthorsWithTags(tx)
		if err != nil {
			return err
		}
		observations, err := listAllObservations(tx)
		if err != nil {
			return err
		}
		latest, err := latestObservationPerAuthor(tx)
		if err != nil {
			return err
		}
		snapshot.Authors = authors
		snapshot.Observations = observations
		snapshot.Latest = latest
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Loaded snapshot",
		"authors", len(snapshot.Authors),
		"observations", len(snapshot.Observations),
		"latest", len(snapshot.Latest))
	return snapshot, nil
}
