package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filedrive/service/internal/storage"
)

func newTestService() (*Service, *fakeRepo, *fakeStorage) {
	repo := newFakeRepo()
	blobs := newFakeStorage()
	return NewService(repo, blobs), repo, blobs
}

func TestUploadDownloadDeleteScenario(t *testing.T) {
	svc, _, blobs := newTestService()
	ctx := context.Background()

	rec, err := svc.Upload(ctx, "a.txt", "text/plain", 11, strings.NewReader("hello world"))
	require.NoError(t, err)
	assert.False(t, rec.ID.IsZero())
	assert.Equal(t, "a.txt", rec.Name)
	assert.Equal(t, int64(11), rec.Size)
	assert.Equal(t, "text/plain", rec.ContentType)
	assert.True(t, strings.HasPrefix(rec.StorageKey, "files/"))
	assert.False(t, rec.UploadedAt.IsZero())

	got, stream, err := svc.Download(ctx, rec.ID.Hex())
	require.NoError(t, err)
	defer stream.Close()
	data, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
	assert.Equal(t, rec.ID, got.ID)

	require.NoError(t, svc.Delete(ctx, rec.ID.Hex()))

	_, _, err = svc.Download(ctx, rec.ID.Hex())
	assert.ErrorIs(t, err, ErrNotFound)

	// The blob is gone too, observably.
	_, err = blobs.Get(ctx, rec.StorageKey)
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)
}

func TestUploadValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Upload(ctx, "", "text/plain", 1, strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = svc.Upload(ctx, strings.Repeat("a", MaxNameLength+1), "text/plain", 1, strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrNameTooLong)
}

func TestUploadDefaultsContentType(t *testing.T) {
	svc, _, _ := newTestService()

	rec, err := svc.Upload(context.Background(), "blob.bin", "", 3, strings.NewReader("abc"))
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", rec.ContentType)
}

func TestUploadInsertFailureOrphansBlob(t *testing.T) {
	svc, repo, blobs := newTestService()
	repo.insertErr = errors.New("mongo down")

	_, err := svc.Upload(context.Background(), "a.txt", "text/plain", 5, strings.NewReader("hello"))
	require.Error(t, err)

	// The blob survives (no compensating delete) and no record exists.
	assert.Len(t, blobs.objects, 1)
	assert.Empty(t, repo.files)
}

func TestUploadBlobFailureWritesNothing(t *testing.T) {
	svc, repo, blobs := newTestService()
	blobs.putErr = errors.New("minio down")

	_, err := svc.Upload(context.Background(), "a.txt", "text/plain", 5, strings.NewReader("hello"))
	require.Error(t, err)
	assert.Empty(t, repo.files)
	assert.Empty(t, blobs.objects)
}

func TestDownloadContentMissing(t *testing.T) {
	svc, repo, _ := newTestService()

	rec, err := repo.Insert(context.Background(), &File{
		Name:       "ghost.txt",
		StorageKey: "files/2024/01/01/gone",
		UploadedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	_, _, err = svc.Download(context.Background(), rec.ID.Hex())
	assert.ErrorIs(t, err, ErrContentMissing)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestLifecycleRejectsUnknownAndMalformedIDs(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	missing := "656f1a2b3c4d5e6f70819203"

	_, err := svc.GetMetadata(ctx, missing)
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = svc.Download(ctx, missing)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Rename(ctx, missing, "new.txt")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, missing), ErrNotFound)
	_, err = svc.DownloadLink(ctx, missing)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetMetadata(ctx, "not-an-id")
	assert.ErrorIs(t, err, ErrInvalidID)
	assert.ErrorIs(t, svc.Delete(ctx, "not-an-id"), ErrInvalidID)
}

func TestRenameTouchesOnlyName(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	rec, err := svc.Upload(ctx, "old.txt", "text/plain", 5, strings.NewReader("hello"))
	require.NoError(t, err)

	renamed, err := svc.Rename(ctx, rec.ID.Hex(), "new.txt")
	require.NoError(t, err)
	assert.Equal(t, "new.txt", renamed.Name)
	assert.Equal(t, rec.Size, renamed.Size)
	assert.Equal(t, rec.ContentType, renamed.ContentType)
	assert.Equal(t, rec.StorageKey, renamed.StorageKey)
	assert.Equal(t, rec.UploadedAt, renamed.UploadedAt)

	_, err = svc.Rename(ctx, rec.ID.Hex(), "")
	assert.ErrorIs(t, err, ErrEmptyName)
	_, err = svc.Rename(ctx, rec.ID.Hex(), strings.Repeat("x", MaxNameLength+1))
	assert.ErrorIs(t, err, ErrNameTooLong)
}

func TestDeleteBlobFailureKeepsRecord(t *testing.T) {
	svc, _, blobs := newTestService()
	ctx := context.Background()

	rec, err := svc.Upload(ctx, "a.txt", "text/plain", 5, strings.NewReader("hello"))
	require.NoError(t, err)

	blobs.delErr = errors.New("minio down")
	require.Error(t, svc.Delete(ctx, rec.ID.Hex()))

	// Metadata deletion must not have been attempted; the whole operation
	// stays retryable.
	_, err = svc.GetMetadata(ctx, rec.ID.Hex())
	assert.NoError(t, err)

	blobs.delErr = nil
	require.NoError(t, svc.Delete(ctx, rec.ID.Hex()))
	_, err = svc.GetMetadata(ctx, rec.ID.Hex())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListPaginationIsStable(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := repo.Insert(ctx, &File{
			Name:       fmt.Sprintf("doc-%d.txt", i),
			UploadedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	p1, err := svc.List(ctx, "", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), p1.Total)
	require.Len(t, p1.Files, 2)
	assert.Equal(t, "doc-4.txt", p1.Files[0].Name)

	p2, err := svc.List(ctx, "", 2, 2)
	require.NoError(t, err)
	require.Len(t, p2.Files, 2)

	p3, err := svc.List(ctx, "", 3, 2)
	require.NoError(t, err)
	require.Len(t, p3.Files, 1)

	// Concatenating all pages yields every record exactly once, newest first.
	var names []string
	for _, p := range []*Page{p1, p2, p3} {
		for _, f := range p.Files {
			names = append(names, f.Name)
		}
	}
	assert.Equal(t, []string{"doc-4.txt", "doc-3.txt", "doc-2.txt", "doc-1.txt", "doc-0.txt"}, names)
}

func TestListSearchIsCaseInsensitive(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	for _, name := range []string{"Report.pdf", "notes.txt", "REPORT-final.pdf"} {
		_, err := repo.Insert(ctx, &File{Name: name, UploadedAt: time.Now().UTC()})
		require.NoError(t, err)
	}

	p, err := svc.List(ctx, "report", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), p.Total)
	assert.Len(t, p.Files, 2)
}

func TestDownloadLink(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	rec, err := svc.Upload(ctx, "a.txt", "text/plain", 5, strings.NewReader("hello"))
	require.NoError(t, err)

	link, err := svc.DownloadLink(ctx, rec.ID.Hex())
	require.NoError(t, err)
	assert.Contains(t, link.URL, rec.StorageKey)
	assert.Equal(t, int64(900), link.ExpiresIn)
}
