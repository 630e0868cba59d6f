package database

import (
	"context"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"socialdex/src/datamodels"
	"socialdex/src/utils/errors"
	"socialdex/src/utils/general"
)

type AuthorDatabase interface {
	// SyncAuthor upserts the author by (platform, uid) and replaces its tags
	// in one transaction. Returns the author id.
	SyncAuthor(ctx context.Context, author datamodels.Author, tags []string) (int64, error)
	ListAuthorsWithTags(ctx context.Context) ([]datamodels.AuthorWithTags, error)
}

func (d *databaseImplementation) SyncAuthor(
	ctx context.Context,
	author datamodels.Author,
	tags []string) (int64, error) {

	var authorId int64
	err := d.gormDb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := upsertAuthor(tx, author)
		if err != nil {
			return err
		}
		authorId = id
		return replaceAuthorTags(tx, id, tags)
	})
	if err != nil {
		return 0, errors.Wrapf(err, "failed to sync author %s/%s", author.Platform, author.Uid)
	}
	return authorId, nil
}

func upsertAuthor(tx *gorm.DB, author datamodels.Author) (int64, error) {
	row := datamodels.Author{
		Platform: author.Platform,
		Uid:      author.Uid,
		Name:     author.Name,
		Avatar:   author.Avatar,
		BlueChip: author.BlueChip,
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "platform"}, {Name: "uid"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "avatar", "blue_chip", "updated_at"}),
	}).Omit("Tags").Create(&row).Error
	if err != nil {
		return 0, err
	}

	var stored datamodels.Author
	if err := tx.Select("id").
		Where("platform = ? AND uid = ?", author.Platform, author.Uid).
		First(&stored).Error; err != nil {
		return 0, err
	}
	return stored.Id, nil
}

// Tag history is not kept: membership is always as of the latest sync.
func replaceAuthorTags(tx *gorm.DB, authorId int64, tags []string) error {
	if err := tx.Where("author_id = ?", authorId).Delete(&datamodels.AuthorTag{}).Error; err != nil {
		return err
	}

	tags = general.DistinctItems(tags)
	if len(tags) == 0 {
		return nil
	}
	rows := make([]datamodels.AuthorTag, 0, len(tags))
	for _, tag := range tags {
		rows = append(rows, datamodels.AuthorTag{AuthorId: authorId, Tag: tag})
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

func (d *databaseImplementation) ListAuthorsWithTags(ctx context.Context) ([]datamodels.AuthorWithTags, error) {
	return listAuthorsWithTags(d.gormDb.WithContext(ctx))
}

func listAuthorsWithTags(tx *gorm.DB) ([]datamodels.AuthorWithTags, error) {
	var authors []datamodels.Author
	if err := tx.Order("id ASC").Find(&authors).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list authors")
	}

	var tags []datamodels.AuthorTag
	if err := tx.Order("author_id ASC, tag ASC").Find(&tags).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list author tags")
	}

	tagsByAuthor := make(map[int64][]string, len(authors))
	for _, t := range tags {
		tagsByAuthor[t.AuthorId] = append(tagsByAuthor[t.AuthorId], t.Tag)
	}

	result := make([]datamodels.AuthorWithTags, 0, len(authors))
	for _, a := range authors {
		authorTags, ok := tagsByAuthor[a.Id]
		if !ok {
			authorTags = []string{}
		}
		result = append(result, datamodels.AuthorWithTags{
			Id:       a.Id,
			Platform: a.Platform,
			Uid:      a.Uid,
			Name:     a.Name,
			BlueChip: a.BlueChip,
			Tags:     authorTags,
		})
	}
	slog.Debug("Listed authors", "authors", len(result), "tag_rows", len(tags))
	return result, nil
}

// SyncAuthors pushes the configured authors into the store, the way a config
// sync does: upsert each author, then fully replace its tags.
func SyncAuthors(ctx context.Context, db AuthorDatabase, authors []datamodels.AuthorConfig) (int, error) {
	synced := 0
	for _, cfg := range authors {
		platform := cfg.Platform
		if platform == "" {
			platform = datamodels.PlatformBilibili
		}
		_, err := db.SyncAuthor(ctx, datamodels.Author{
			Platform: platform,
			Uid:      cfg.Uid,
			Name:     cfg.Name,
			Avatar:   cfg.Avatar,
			BlueChip: cfg.BlueChip,
		}, cfg.Tags)
		if err != nil {
			return synced, err
		}
		synced++
	}
	slog.Info("Synced authors", "count", synced)
	return synced, nil
}
