package general

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"

	"cloud.google.com/go/storage"
)

func GetCurrentFilepath() string {
	_, filename, _, _ := runtime.Caller(1)
	return filepath.Dir(filename)
}

func GetCurrentDir() string {
	return filepath.Dir(GetCurrentFilepath())
}

// IsValidURL checks if a string is a valid URL with allowed schemes
func IsValidURL(rawURL string) (bool, string) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return false, "URL is empty"
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return false, fmt.Sprintf("Invalid URL format: %v", err)
	}

	scheme := strings.ToLower(parsedURL.Scheme)
	if scheme == "" {
		return false, "URL scheme is missing"
	}
	if scheme != "http" && scheme != "https" {
		return false, "URL scheme must be http or https"
	}

	if parsedURL.Host == "" {
		return false, "URL host is missing"
	}

	return true, ""
}

// CopyToBucket streams r into gs://bucketName/objectPath.
func CopyToBucket(ctx context.Context, client *storage.Client, r io.Reader, bucketName, objectPath, contentType string) error {
	writer := client.Bucket(bucketName).Object(objectPath).NewWriter(ctx)
	if contentType != "" {
		writer.ContentType = contentType
	}

	if _, err := io.Copy(writer, r); err != nil {
		writer.Close()
		return err
	}

	return writer.Close()
}

func CopyBytesToBucket(ctx context.Context, client *storage.Client, data []byte, bucketName, objectPath, contentType string) error {
	return CopyToBucket(ctx, client, bytes.NewReader(data), bucketName, objectPath, contentType)
}

func ItemInSlice[T comparable](slice []T, item T) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func NoDuplicateItemsInSlice[T comparable](slice []T) bool {
	seen := make(map[T]bool)
	for _, item := range slice {
		if seen[item] {
			return false
		}
		seen[item] = true
	}
	return true
}

// DistinctItems keeps the first occurrence of each item, preserving order.
func DistinctItems[T comparable](slice []T) []T {
	seen := make(map[T]bool, len(slice))
	out := make([]T, 0, len(slice))
	for _, item := range slice {
		if seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}

func GetSystemUsage() map[string]string {
	report := make(map[string]string)

	report["num_cpu"] = fmt.Sprintf("%d", runtime.NumCPU())
	report["num_goroutine"] = fmt.Sprintf("%d", runtime.NumGoroutine())

	memoryUsage := runtime.MemStats{}
	runtime.ReadMemStats(&memoryUsage)
	report["memory_usage"] = fmt.Sprintf("%d", memoryUsage.Alloc)
	report["memory_heap_inuse"] = fmt.Sprintf("%d", memoryUsage.HeapInuse)

	return report
}
