package database

import (
	"context"

	"gorm.io/gorm"

	"socialdex/src/datamodels"
	"socialdex/src/utils/errors"
)

type IndexRunDatabase interface {
	WriteIndexRun(ctx context.Context, run datamodels.IndexRun) error
	// GetLatestIndexRun returns nil without error when no run has been stored.
	GetLatestIndexRun(ctx context.Context) (*datamodels.IndexRun, error)
}

func (d *databaseImplementation) WriteIndexRun(ctx context.Context, run datamodels.IndexRun) error {
	return d.gormDb.WithContext(ctx).Create(&run).Error
}

func (d *databaseImplementation) GetLatestIndexRun(ctx context.Context) (*datamodels.IndexRun, error) {
	var run datamodels.IndexRun
	err := d.gormDb.WithContext(ctx).Order("built_at DESC, id DESC").First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read latest index run")
	}
	return &run, nil
}
