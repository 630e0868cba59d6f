package metrics

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"socialdex/src/datamodels"
	"socialdex/src/utils/errors"
)

const (
	DataFileName = "data.json"
	HTMLFileName = "index.html"
)

//go:embed templates/index.html.tmpl
var templateFS embed.FS

var indexPageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html.tmpl"))

// FileIndexWriter renders data.json and a self-contained chart page into a directory.
type FileIndexWriter struct {
	baseDir string
	title   string
}

func NewFileIndexWriter(baseDir string, title string) (*FileIndexWriter, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, errors.Wrapf(err, "failed to create output directory %s", baseDir)
	}
	if title == "" {
		title = "SocialDex"
	}
	return &FileIndexWriter{
		baseDir: baseDir,
		title:   title,
	}, nil
}

func (w *FileIndexWriter) Files() []string {
	return []string{
		filepath.Join(w.baseDir, DataFileName),
		filepath.Join(w.baseDir, HTMLFileName),
	}
}

// MarshalSeries encodes the presentation shape: index name -> [{time, value}].
func MarshalSeries(result *datamodels.IndexResult, indent bool) ([]byte, error) {
	series := result.SeriesByName()
	if indent {
		return json.MarshalIndent(series, "", "  ")
	}
	return json.Marshal(series)
}

func (w *FileIndexWriter) Write(ctx context.Context, result *datamodels.IndexResult) error {
	data, err := MarshalSeries(result, true)
	if err != nil {
		return errors.Wrap(err, "failed to marshal index series")
	}
	dataPath := filepath.Join(w.baseDir, DataFileName)
	if err := os.WriteFile(dataPath, data, 0644); err != nil {
		return errors.Wrapf(err, "failed to write %s", dataPath)
	}

	inline, err := MarshalSeries(result, false)
	if err != nil {
		return errors.Wrap(err, "failed to marshal index series")
	}
	var page bytes.Buffer
	err = indexPageTemplate.Execute(&page, struct {
		Title   string
		RunId   string
		BuiltAt string
		Data    template.JS
	}{
		Title:   w.title,
		RunId:   result.RunId,
		BuiltAt: result.BuiltAt.Format(time.RFC3339),
		Data:    template.JS(inline),
	})
	if err != nil {
		return errors.Wrap(err, "failed to render index page")
	}
	htmlPath := filepath.Join(w.baseDir, HTMLFileName)
	if err := os.WriteFile(htmlPath, page.Bytes(), 0644); err != nil {
		return errors.Wrapf(err, "failed to write %s", htmlPath)
	}

	slog.Info("Wrote index files", "dir", w.baseDir, "indices", len(result.Indices))
	return nil
}

func (w *FileIndexWriter) Close() error {
	return nil
}
