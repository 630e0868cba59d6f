package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialdex/src/datamodels"
	"socialdex/src/utils/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFileDefaults(t *testing.T) {
	path := writeFile(t, "config.yaml", "database:\n  driver: sqlite\n")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, datamodels.DriverSqlite, cfg.DatabaseConfig.Driver)
	assert.Equal(t, "data/social_dex.db", cfg.DatabaseConfig.SqlitePath)
	assert.Equal(t, 10000.0, cfg.IndicesConfig.Divisor)
	assert.Equal(t, 2, cfg.IndicesConfig.Precision)
	assert.Equal(t, 100, cfg.IndicesConfig.BlueChip.Size)
	assert.Equal(t, datamodels.DefaultBlueChipName, cfg.IndicesConfig.BlueChip.Name)
	assert.True(t, cfg.IndicesConfig.BlueChip.Enabled)
	assert.Equal(t, time.Second, cfg.CrawlerConfig.InterRequestDelay)
	assert.Equal(t, 10*time.Second, cfg.CrawlerConfig.RequestTimeout)
	assert.True(t, cfg.CrawlerConfig.BatchTimestamp)
	assert.Equal(t, "/metrics", cfg.ServerConfig.MetricsEndpoint)
}

func TestLoadFileOverrides(t *testing.T) {
	path := writeFile(t, "config.yaml", `
database:
  driver: postgres
  postgres:
    host: db.internal
    database: socialdex
    user: dex
indices:
  parallelism: 8
  blue_chip:
    name: top10
    size: 10
    eligible_only: true
crawler:
  inter_request_delay: 250ms
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, datamodels.DriverPostgres, cfg.DatabaseConfig.Driver)
	assert.Equal(t, "db.internal", cfg.DatabaseConfig.Postgres.Host)
	assert.Equal(t, 5432, cfg.DatabaseConfig.Postgres.Port)
	assert.Equal(t, "disable", cfg.DatabaseConfig.Postgres.SSL.Mode)
	assert.Equal(t, 8, cfg.IndicesConfig.Parallelism)
	assert.Equal(t, "top10", cfg.IndicesConfig.BlueChip.Name)
	assert.Equal(t, 10, cfg.IndicesConfig.BlueChip.Size)
	assert.True(t, cfg.IndicesConfig.BlueChip.EligibleOnly)
	assert.Equal(t, 250*time.Millisecond, cfg.CrawlerConfig.InterRequestDelay)
}

func TestLoadFileRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown driver", "database:\n  driver: mysql\n"},
		{"bad blue chip size", "indices:\n  blue_chip:\n    size: 0\n"},
		{"bad base url", "crawler:\n  bilibili_base_url: not-a-url\n"},
		{"bucket writer without bucket", "output:\n  bucket_writer: true\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeFile(t, "config.yaml", tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadAuthors(t *testing.T) {
	path := writeFile(t, "config.json", `{
  "authors": [
    {"uid": 546195, "name": "老番茄", "tags": ["entertainment"], "blue_chip": true},
    {"platform": "bilibili", "uid": "9824766", "name": "敬汉卿", "avatar": "https://i0.hdslb.com/a.jpg", "tags": ["entertainment", "life"]}
  ]
}`)

	authors, err := LoadAuthors(path)
	require.NoError(t, err)
	require.Len(t, authors, 2)

	assert.Equal(t, datamodels.PlatformBilibili, authors[0].Platform)
	assert.Equal(t, "546195", authors[0].Uid)
	assert.True(t, authors[0].BlueChip)
	assert.Equal(t, []string{"entertainment", "life"}, authors[1].Tags)
	assert.Equal(t, "https://i0.hdslb.com/a.jpg", authors[1].Avatar)
}

func TestLoadAuthorsMissingFile(t *testing.T) {
	authors, err := LoadAuthors(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Empty(t, authors)
}

func TestLoadAuthorsRejectsMissingName(t *testing.T) {
	path := writeFile(t, "config.json", `{"authors": [{"uid": "1"}]}`)
	_, err := LoadAuthors(path)
	assert.Error(t, err)
}

func TestLoadAuthorsRejectsDuplicateAccount(t *testing.T) {
	path := writeFile(t, "config.json", `{"authors": [
    {"uid": "1", "name": "a"},
    {"platform": "bilibili", "uid": "1", "name": "b"}
  ]}`)
	_, err := LoadAuthors(path)
	assert.Error(t, err)
}

func TestLoadAuthorsRejectsUnknownPlatform(t *testing.T) {
	path := writeFile(t, "config.json", `{"authors": [{"platform": "youtube", "uid": "1", "name": "a"}]}`)
	_, err := LoadAuthors(path)
	assert.True(t, errors.Is(err, errors.ErrUnknownPlatform))
}

func TestLoadFileWithoutFile(t *testing.T) {
	t.Setenv("SOCIALDEX_INDICES_BLUE_CHIP_SIZE", "25")
	cfg, err := LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.IndicesConfig.BlueChip.Size)
	assert.Equal(t, datamodels.DriverSqlite, cfg.DatabaseConfig.Driver)
}
