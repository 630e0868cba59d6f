package datamodels

import (
	"time"

	"socialdex/src/utils/errors"
	"socialdex/src/utils/general"
)

type SocialdexConfig struct {
	DatabaseConfig DatabaseConfig `mapstructure:"database"`
	AuthorsFile    string         `mapstructure:"authors_file"`
	CrawlerConfig  CrawlerConfig  `mapstructure:"crawler"`
	IndicesConfig  IndicesConfig  `mapstructure:"indices"`
	OutputConfig   OutputConfig   `mapstructure:"output"`
	StorageConfig  StorageConfig  `mapstructure:"storage"`
	ServerConfig   ServerConfig   `mapstructure:"server"`
}

type DatabaseDriver string

const (
	DriverSqlite   DatabaseDriver = "sqlite"
	DriverPostgres DatabaseDriver = "postgres"
)

type DatabaseConfig struct {
	Driver     DatabaseDriver `mapstructure:"driver"`
	SqlitePath string         `mapstructure:"sqlite_path"`
	Postgres   PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Database string `mapstructure:"database"`
	Host     string `mapstructure:"host"`
	Password string `mapstructure:"password"`
	Port     int    `mapstructure:"port"`
	SSL      struct {
		CA   string `mapstructure:"ca"`
		Cert string `mapstructure:"cert"`
		Key  string `mapstructure:"key"`
		Mode string `mapstructure:"mode"`
	} `mapstructure:"ssl"`
	URI  string `mapstructure:"uri"`
	User string `mapstructure:"user"`
}

type CrawlerConfig struct {
	BilibiliBaseURL     string        `mapstructure:"bilibili_base_url"`
	UserAgent           string        `mapstructure:"user_agent"`
	RequestTimeout      time.Duration `mapstructure:"request_timeout"`
	InterRequestDelay   time.Duration `mapstructure:"inter_request_delay"`
	MaxRetries          int           `mapstructure:"max_retries"`
	RetryBaseDelay      time.Duration `mapstructure:"retry_base_delay"`
	RetryMaxDelay       time.Duration `mapstructure:"retry_max_delay"`
	BatchTimestamp      bool          `mapstructure:"batch_timestamp"`
	TimestampResolution time.Duration `mapstructure:"timestamp_resolution"`
}

type BlueChipConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Name         string `mapstructure:"name"`
	Size         int    `mapstructure:"size"`
	EligibleOnly bool   `mapstructure:"eligible_only"`
}

type IndicesConfig struct {
	Divisor     float64        `mapstructure:"divisor"`
	Precision   int            `mapstructure:"precision"`
	Parallelism int            `mapstructure:"parallelism"`
	BlueChip    BlueChipConfig `mapstructure:"blue_chip"`
}

func (c *IndicesConfig) Validate() error {
	if c.Divisor <= 0 {
		return errors.New("indices.divisor must be greater than 0")
	}
	if c.Precision < 0 {
		return errors.New("indices.precision must not be negative")
	}
	if c.BlueChip.Enabled {
		if c.BlueChip.Name == "" {
			return errors.New("indices.blue_chip.name is required")
		}
		if c.BlueChip.Size <= 0 {
			return errors.New("indices.blue_chip.size must be greater than 0")
		}
	}
	return nil
}

type OutputConfig struct {
	Dir           string `mapstructure:"dir"`
	Title         string `mapstructure:"title"`
	FileWriter    bool   `mapstructure:"file_writer"`
	PlotWriter    bool   `mapstructure:"plot_writer"`
	DBWriter      bool   `mapstructure:"db_writer"`
	BucketWriter  bool   `mapstructure:"bucket_writer"`
	ChartWidthIn  int    `mapstructure:"chart_width_in"`
	ChartHeightIn int    `mapstructure:"chart_height_in"`
}

type StorageConfig struct {
	Bucket string `mapstructure:"bucket"`
	Prefix string `mapstructure:"prefix"`
}

type ServerConfig struct {
	Port            string `mapstructure:"port"`
	MetricsEndpoint string `mapstructure:"metrics_endpoint"`
	HealthEndpoint  string `mapstructure:"health_endpoint"`
}

func (c *SocialdexConfig) Validate() error {
	switch c.DatabaseConfig.Driver {
	case DriverSqlite:
		if c.DatabaseConfig.SqlitePath == "" {
			return errors.New("database.sqlite_path is required for the sqlite driver")
		}
	case DriverPostgres:
	default:
		return errors.Newf("unknown database driver %q", c.DatabaseConfig.Driver)
	}
	if err := c.IndicesConfig.Validate(); err != nil {
		return err
	}
	if c.OutputConfig.BucketWriter && c.StorageConfig.Bucket == "" {
		return errors.New("storage.bucket is required when output.bucket_writer is set")
	}
	return nil
}

// AuthorConfig is one entry of the authors file.
type AuthorConfig struct {
	Platform Platform `mapstructure:"platform"`
	Uid      string   `mapstructure:"uid"`
	Name     string   `mapstructure:"name"`
	Avatar   string   `mapstructure:"avatar"`
	BlueChip bool     `mapstructure:"blue_chip"`
	Tags     []string `mapstructure:"tags"`
}

type AuthorsFileConfig struct {
	Authors []AuthorConfig `mapstructure:"authors"`
}

func (a *AuthorConfig) Validate() error {
	if a.Uid == "" {
		return errors.New("author uid is required")
	}
	if a.Name == "" {
		return errors.Newf("author %s: name is required", a.Uid)
	}
	if !general.ItemInSlice(SupportedPlatforms, a.Platform) {
		return errors.Wrapf(errors.ErrUnknownPlatform, "author %s: %s", a.Uid, a.Platform)
	}
	return nil
}
