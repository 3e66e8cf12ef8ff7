package storage_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/tagpack/pkg/domain/model"
	"github.com/m-mizutani/tagpack/pkg/infra/storage"
)

func readAll(t *testing.T, r io.ReadCloser) string {
	t.Helper()
	defer r.Close()
	data, err := io.ReadAll(r)
	gt.NoError(t, err)
	return string(data)
}

func TestFileSystem_PutGet(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "archives")
	store, err := storage.NewFileSystem(root)
	gt.NoError(t, err)

	gt.NoError(t, store.Put(ctx, "mywebform/7.x-1.0.tar.gz", strings.NewReader("first"), model.ArchiveMediaType))
	gt.NoError(t, store.Put(ctx, "mywebform/7.x-1.0.tar.gz", strings.NewReader("second"), model.ArchiveMediaType))

	r, err := store.Get(ctx, "mywebform/7.x-1.0.tar.gz")
	gt.NoError(t, err)
	gt.Value(t, readAll(t, r)).Equal("second")

	_, err = os.Stat(filepath.Join(root, "mywebform", "7.x-1.0.tar.gz"))
	gt.NoError(t, err)

	t.Run("missing object", func(t *testing.T) {
		_, err := store.Get(ctx, "mywebform/6.x-1.0.tar.gz")
		gt.Error(t, err)
		gt.True(t, errors.Is(err, model.ErrNotFound))
	})

	t.Run("directory is not an object", func(t *testing.T) {
		_, err := store.Get(ctx, "mywebform")
		gt.True(t, errors.Is(err, model.ErrNotFound))
	})

	t.Run("rejects traversal", func(t *testing.T) {
		gt.Error(t, store.Put(ctx, "../escape.xml", strings.NewReader("x"), model.DescriptorMediaType))
		_, err := store.Get(ctx, "mywebform/../../escape.xml")
		gt.Error(t, err)
		gt.Error(t, store.Put(ctx, "/abs.xml", strings.NewReader("x"), model.DescriptorMediaType))
	})
}

func TestFileSystem_List(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewFileSystem(t.TempDir())
	gt.NoError(t, err)

	for _, key := range []string{
		"mywebform/7.x-1.1.xml",
		"mywebform/7.x-1.0.xml",
		"mywebform2/7.x-1.0.xml",
		"other/6.x-1.0.xml",
	} {
		gt.NoError(t, store.Put(ctx, key, strings.NewReader(key), model.DescriptorMediaType))
	}

	keys, err := store.List(ctx, "mywebform/")
	gt.NoError(t, err)
	gt.Value(t, keys).Equal([]string{"mywebform/7.x-1.0.xml", "mywebform/7.x-1.1.xml"})

	keys, err = store.List(ctx, "mywebform")
	gt.NoError(t, err)
	gt.Value(t, keys).Equal([]string{"mywebform/7.x-1.0.xml", "mywebform/7.x-1.1.xml", "mywebform2/7.x-1.0.xml"})

	keys, err = store.List(ctx, "")
	gt.NoError(t, err)
	gt.Number(t, len(keys)).Equal(4)

	keys, err = store.List(ctx, "missing/")
	gt.NoError(t, err)
	gt.Number(t, len(keys)).Equal(0)
}

func TestGCS_Emulator(t *testing.T) {
	bucket := os.Getenv("TEST_GCS_BUCKET")
	if bucket == "" || os.Getenv("STORAGE_EMULATOR_HOST") == "" {
		t.Skip("TEST_GCS_BUCKET and STORAGE_EMULATOR_HOST are not set")
	}

	ctx := context.Background()
	store, err := storage.NewGCS(ctx, bucket, "tagpack-test")
	gt.NoError(t, err)
	defer store.Close()

	gt.NoError(t, store.Put(ctx, "mywebform/7.x-1.0.xml", strings.NewReader("<project/>"), model.DescriptorMediaType))

	r, err := store.Get(ctx, "mywebform/7.x-1.0.xml")
	gt.NoError(t, err)
	gt.Value(t, readAll(t, r)).Equal("<project/>")

	keys, err := store.List(ctx, "mywebform/")
	gt.NoError(t, err)
	gt.Value(t, keys).Equal([]string{"mywebform/7.x-1.0.xml"})

	_, err = store.Get(ctx, "mywebform/none.xml")
	gt.True(t, errors.Is(err, model.ErrNotFound))
}
