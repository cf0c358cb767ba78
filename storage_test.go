package genmedia

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStorage struct {
	objects map[string][]byte
	failOn  string
}

func (m *memoryStorage) SaveFile(_ context.Context, data []byte, path, _ string) (string, error) {
	if path == m.failOn {
		return "", errors.New("write failed")
	}
	m.objects[path] = data
	return "mem://" + path, nil
}

func testBatch(n int) *Batch {
	data := make([]float32, n*2*2*Channels)
	for i := range data {
		data[i] = 0.5
	}
	return &Batch{N: n, Height: 2, Width: 2, Data: data}
}

func TestSaveBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("saves each image as png", func(t *testing.T) {
		store := &memoryStorage{objects: map[string][]byte{}}

		results, err := SaveBatch(ctx, store, testBatch(2), "imagen/run")

		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "imagen/run_0.png", results[0].Path)
		assert.Equal(t, "mem://imagen/run_1.png", results[1].URI)

		img, err := png.Decode(bytes.NewReader(store.objects["imagen/run_0.png"]))
		require.NoError(t, err)
		assert.Equal(t, 2, img.Bounds().Dx())
	})

	t.Run("single image keeps base path", func(t *testing.T) {
		store := &memoryStorage{objects: map[string][]byte{}}

		results, err := SaveBatch(ctx, store, testBatch(1), "imagen/one")

		require.NoError(t, err)
		assert.Equal(t, "imagen/one.png", results[0].Path)
	})

	t.Run("returns partial results on failure", func(t *testing.T) {
		store := &memoryStorage{objects: map[string][]byte{}, failOn: "imagen/run_1.png"}

		results, err := SaveBatch(ctx, store, testBatch(2), "imagen/run")

		assert.Error(t, err)
		assert.Len(t, results, 1)
	})

	t.Run("no storage", func(t *testing.T) {
		_, err := SaveBatch(ctx, nil, testBatch(1), "x")
		assert.ErrorIs(t, err, ErrStorageNotConfigured)
	})
}
