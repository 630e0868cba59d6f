package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"socialdex/src/datamodels"
	"socialdex/src/utils/errors"
	"socialdex/src/utils/general"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", string(datamodels.DriverSqlite))
	v.SetDefault("database.sqlite_path", "data/social_dex.db")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.ssl.mode", "disable")
	v.SetDefault("authors_file", "data/config.json")

	v.SetDefault("crawler.bilibili_base_url", "https://api.bilibili.com")
	v.SetDefault("crawler.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	v.SetDefault("crawler.request_timeout", 10*time.Second)
	v.SetDefault("crawler.inter_request_delay", time.Second)
	v.SetDefault("crawler.max_retries", 2)
	v.SetDefault("crawler.retry_base_delay", 500*time.Millisecond)
	v.SetDefault("crawler.retry_max_delay", 5*time.Second)
	v.SetDefault("crawler.batch_timestamp", true)
	v.SetDefault("crawler.timestamp_resolution", time.Second)

	v.SetDefault("indices.divisor", datamodels.DefaultIndexDivisor)
	v.SetDefault("indices.precision", datamodels.DefaultIndexPrecision)
	v.SetDefault("indices.parallelism", 4)
	v.SetDefault("indices.blue_chip.enabled", true)
	v.SetDefault("indices.blue_chip.name", datamodels.DefaultBlueChipName)
	v.SetDefault("indices.blue_chip.size", datamodels.DefaultBasketSize)
	v.SetDefault("indices.blue_chip.eligible_only", false)

	v.SetDefault("output.dir", "frontend")
	v.SetDefault("output.title", "SocialDex")
	v.SetDefault("output.file_writer", true)
	v.SetDefault("output.plot_writer", false)
	v.SetDefault("output.db_writer", true)
	v.SetDefault("output.bucket_writer", false)
	v.SetDefault("output.chart_width_in", 12)
	v.SetDefault("output.chart_height_in", 6)

	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.metrics_endpoint", "/metrics")
	v.SetDefault("server.health_endpoint", "/health")
}

// Load reads the YAML config named by CONFIG_PATH, falling back to
// config.local.yaml in the working directory and then at the repository root.
// With no file at all the defaults are used. SOCIALDEX_* env vars override keys.
func Load() (*datamodels.SocialdexConfig, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		// go up two levels to the repository root
		candidates := []string{
			"config.local.yaml",
			filepath.Join(general.GetCurrentDir(), "..", "..", "config.local.yaml"),
		}
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				configPath = candidate
				break
			}
		}
		if configPath == "" {
			slog.Info("No config file found, using defaults")
		}
	}
	return LoadFile(configPath)
}

func LoadFile(configPath string) (*datamodels.SocialdexConfig, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("SOCIALDEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config %s", configPath)
		}
	}

	var socialdexConfig datamodels.SocialdexConfig
	if err := v.Unmarshal(&socialdexConfig); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	if ok, msg := general.IsValidURL(socialdexConfig.CrawlerConfig.BilibiliBaseURL); !ok {
		return nil, errors.Newf("crawler.bilibili_base_url: %s", msg)
	}
	if err := socialdexConfig.Validate(); err != nil {
		return nil, err
	}

	return &socialdexConfig, nil
}

// LoadAuthors reads the authors file (JSON or YAML by extension).
func LoadAuthors(authorsPath string) ([]datamodels.AuthorConfig, error) {
	if _, err := os.Stat(authorsPath); os.IsNotExist(err) {
		return []datamodels.AuthorConfig{}, nil
	}

	v := viper.New()
	v.SetConfigFile(authorsPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read authors file %s", authorsPath)
	}

	var authorsFile datamodels.AuthorsFileConfig
	if err := v.Unmarshal(&authorsFile); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal authors file")
	}

	keys := make([]string, 0, len(authorsFile.Authors))
	for i := range authorsFile.Authors {
		author := &authorsFile.Authors[i]
		if author.Platform == "" {
			author.Platform = datamodels.PlatformBilibili
		}
		if err := author.Validate(); err != nil {
			return nil, err
		}
		keys = append(keys, string(author.Platform)+"/"+author.Uid)
	}
	if !general.NoDuplicateItemsInSlice(keys) {
		return nil, errors.Newf("authors file %s lists the same account twice", authorsPath)
	}

	return authorsFile.Authors, nil
}
