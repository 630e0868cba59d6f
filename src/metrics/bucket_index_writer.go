package metrics

import (
	"context"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"

	"cloud.google.com/go/storage"

	"socialdex/src/datamodels"
	"socialdex/src/utils/errors"
	"socialdex/src/utils/general"
)

// BucketIndexWriter uploads the generated files to a GCS bucket.
// It runs after the local writers and also publishes the run's JSON under runs/.
type BucketIndexWriter struct {
	client *storage.Client
	bucket string
	prefix string
	files  []string
}

func NewBucketIndexWriter(client *storage.Client, bucket string, prefix string, files []string) *BucketIndexWriter {
	return &BucketIndexWriter{
		client: client,
		bucket: bucket,
		prefix: prefix,
		files:  files,
	}
}

func (w *BucketIndexWriter) objectName(name string) string {
	return path.Join(w.prefix, name)
}

func (w *BucketIndexWriter) Write(ctx context.Context, result *datamodels.IndexResult) error {
	for _, file := range w.files {
		f, err := os.Open(file)
		if err != nil {
			return errors.Wrapf(err, "failed to open %s for upload", file)
		}
		contentType := mime.TypeByExtension(filepath.Ext(file))
		err = general.CopyToBucket(ctx, w.client, f, w.bucket, w.objectName(filepath.Base(file)), contentType)
		f.Close()
		if err != nil {
			return err
		}
	}

	data, err := MarshalSeries(result, false)
	if err != nil {
		return errors.Wrap(err, "failed to marshal index series")
	}
	object := w.objectName(path.Join("runs", result.RunId+".json"))
	if err := general.CopyBytesToBucket(ctx, w.client, data, w.bucket, object, "application/json"); err != nil {
		return err
	}

	slog.Info("Uploaded indices to bucket", "bucket", w.bucket, "prefix", w.prefix, "files", len(w.files)+1)
	return nil
}

func (w *BucketIndexWriter) Close() error {
	return w.client.Close()
}
