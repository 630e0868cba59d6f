package database

import (
	"context"
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	slogGorm "github.com/orandin/slog-gorm"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"socialdex/src/datamodels"
	"socialdex/src/utils/errors"
)

// SocialdexDatabase is the Observation Store.
type SocialdexDatabase interface {
	AuthorDatabase
	ObservationDatabase
	IndexRunDatabase
	SnapshotDatabase
	Migrate(ctx context.Context) error
	// Notifications returns nil when the driver has no LISTEN/NOTIFY support.
	Notifications() *NotificationManager
	Close() error
}

type databaseImplementation struct {
	gormDb              *gorm.DB
	driver              datamodels.DatabaseDriver
	notificationManager *NotificationManager
}

func NewDBConnection(dbConfig datamodels.DatabaseConfig) (SocialdexDatabase, error) {
	gormConfig := &gorm.Config{
		Logger: slogGorm.New(),
	}

	switch dbConfig.Driver {
	case datamodels.DriverSqlite:
		if dir := filepath.Dir(dbConfig.SqlitePath); dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, errors.Wrapf(err, "cannot create database directory %s", dir)
			}
		}
		gormDb, err := gorm.Open(sqlite.Open(dbConfig.SqlitePath), gormConfig)
		if err != nil {
			return nil, errors.WrapE(err, errors.New("cannot create gorm engine"))
		}
		slog.Info("Connected to database", "driver", dbConfig.Driver, "path", dbConfig.SqlitePath)
		return NewDatabaseFromGorm(gormDb, dbConfig.Driver, nil), nil

	case datamodels.DriverPostgres:
		dbConnString := MakeConnectionString(&dbConfig.Postgres)
		gormDb, err := gorm.Open(postgres.Open(dbConnString), gormConfig)
		if err != nil {
			return nil, errors.WrapE(err, errors.New("cannot create gorm engine"))
		}
		slog.Info("Connected to database",
			"driver", dbConfig.Driver,
			"host", dbConfig.Postgres.Host,
			"database", dbConfig.Postgres.Database,
			"user", dbConfig.Postgres.User)

		notifyManager, err := NewNotificationManager(gormDb)
		if err != nil {
			return nil, errors.WrapE(err, errors.New("cannot create notify manager"))
		}
		return NewDatabaseFromGorm(gormDb, dbConfig.Driver, notifyManager), nil

	default:
		return nil, errors.Newf("unknown database driver %q", dbConfig.Driver)
	}
}

// NewDatabaseFromGorm wraps an already opened gorm handle.
func NewDatabaseFromGorm(gormDb *gorm.DB, driver datamodels.DatabaseDriver, notifyManager *NotificationManager) SocialdexDatabase {
	return &databaseImplementation{
		gormDb:              gormDb,
		driver:              driver,
		notificationManager: notifyManager,
	}
}

func (d *databaseImplementation) Migrate(ctx context.Context) error {
	if err := d.gormDb.WithContext(ctx).AutoMigrate(DbTables...); err != nil {
		return errors.Wrap(err, "auto migrate failed")
	}
	slog.Info("Database schema is up to date", "tables", len(DbTables))
	return nil
}

func (d *databaseImplementation) Notifications() *NotificationManager {
	return d.notificationManager
}

func (d *databaseImplementation) Close() error {
	if d.notificationManager != nil {
		if err := d.notificationManager.Close(); err != nil {
			slog.Warn("Failed to close notification listener", "error", err)
		}
	}
	sqlDb, err := d.gormDb.DB()
	if err != nil {
		return err
	}
	return sqlDb.Close()
}

// MakeConnectionString builds a postgres URL from the config. A configured URI wins.
// Inline SSL material is written to temp files because libpq only takes paths.
func MakeConnectionString(dbConfig *datamodels.PostgresConfig) string {
	if dbConfig.URI != "" {
		return dbConfig.URI
	}

	query := url.Values{}
	query.Set("search_path", "public")
	sslMode := dbConfig.SSL.Mode
	if sslMode == "" {
		sslMode = "disable"
	}
	query.Set("sslmode", sslMode)

	if sslMode != "disable" {
		for param, content := range map[string]string{
			"sslcert":     dbConfig.SSL.Cert,
			"sslkey":      dbConfig.SSL.Key,
			"sslrootcert": dbConfig.SSL.CA,
		} {
			if content == "" {
				continue
			}
			path, err := writeCertificate(content, param+"-*.pem")
			if err != nil {
				slog.Error("Failed to write SSL material", "param", param, "error", err)
				continue
			}
			query.Set(param, path)
		}
	}

	user := url.User(dbConfig.User)
	if dbConfig.Password == "" {
		slog.Warn("No password provided for database connection, using empty password")
	} else {
		user = url.UserPassword(dbConfig.User, dbConfig.Password)
	}

	connURL := url.URL{
		Scheme:   "postgres",
		User:     user,
		Host:     net.JoinHostPort(dbConfig.Host, strconv.Itoa(dbConfig.Port)),
		Path:     "/" + dbConfig.Database,
		RawQuery: query.Encode(),
	}
	return connURL.String()
}

func writeCertificate(content string, pattern string) (string, error) {
	file, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", err
	}
	if _, err := file.WriteString(content); err != nil {
		_ = file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", err
	}
	return file.Name(), nil
}
