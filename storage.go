package genmedia

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
)

// StorageResult contains information about a saved image.
type StorageResult struct {
	// URI identifies the stored object (e.g. "gs://bucket/images/x.png")
	URI string

	// Path is the storage path/key where the image was saved
	Path string

	// Size is the number of bytes saved
	Size int
}

// SaveBatch encodes every batch entry as PNG and saves it to storage.
// Images are saved with paths like: {basePath}_{index}.png
// It returns the results saved so far when a save fails.
func SaveBatch(ctx context.Context, storage Storage, batch *Batch, basePath string) ([]StorageResult, error) {
	if storage == nil {
		return nil, ErrStorageNotConfigured
	}
	if batch == nil || batch.N == 0 {
		return nil, nil
	}

	results := make([]StorageResult, 0, batch.N)
	for i := 0; i < batch.N; i++ {
		var buf bytes.Buffer
		if err := EncodePNG(&buf, batch, i); err != nil {
			return results, fmt.Errorf("encoding image %d: %w", i, err)
		}

		path := basePath
		if batch.N > 1 {
			path = basePath + "_" + strconv.Itoa(i)
		}
		path += ".png"

		uri, err := storage.SaveFile(ctx, buf.Bytes(), path, "image/png")
		if err != nil {
			return results, err
		}

		results = append(results, StorageResult{
			URI:  uri,
			Path: path,
			Size: buf.Len(),
		})
	}

	return results, nil
}
