package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/filedrive/service/internal/storage"
)

// ErrEmptyName is returned when a filename is empty.
var ErrEmptyName = errors.New("file name must not be empty")

// ErrNameTooLong is returned when a filename exceeds MaxNameLength.
var ErrNameTooLong = fmt.Errorf("file name must not exceed %d characters", MaxNameLength)

// ErrContentMissing is returned when a file record exists but its object is
// gone from the blob store. This is an inconsistency needing reconciliation,
// deliberately kept distinct from ErrNotFound so callers can tell "no such
// file" apart from "file record exists but content missing".
var ErrContentMissing = errors.New("file content missing from storage")

// presignExpiry is how long direct download links stay valid.
const presignExpiry = 15 * time.Minute

// MetadataRepo is the metadata persistence surface the Service depends on.
// Implemented by Repository; narrowed to an interface so tests can substitute
// an in-memory fake.
type MetadataRepo interface {
	Insert(ctx context.Context, f *File) (*File, error)
	FindByID(ctx context.Context, id string) (*File, error)
	FindPage(ctx context.Context, search string, page, limit int64) ([]File, int64, error)
	UpdateName(ctx context.Context, id, name string) (*File, error)
	Delete(ctx context.Context, id string) error
}

var _ MetadataRepo = (*Repository)(nil)

// Service coordinates the file lifecycle across the blob store and the
// metadata repository. It owns the ordering between the two: bytes are made
// durable before the record that references them exists, and the record's
// blob is removed before the record itself. The two steps are never atomic;
// when the second step fails, the surviving state is always an unreferenced
// blob, never a record pointing at nothing.
type Service struct {
	repo  MetadataRepo
	blobs storage.Storage
}

// NewService creates a file Service over the given repository and blob store.
func NewService(repo MetadataRepo, blobs storage.Storage) *Service {
	return &Service{repo: repo, blobs: blobs}
}

// Upload stores size bytes from r under a fresh object key and then inserts
// the metadata record referencing it. If the insert fails after the blob
// write succeeded, the blob is left orphaned: a compensating delete could
// itself fail and would mask the original error, so orphans are logged and
// reconciled out-of-band instead.
func (s *Service) Upload(ctx context.Context, filename, contentType string, size int64, r io.Reader) (*File, error) {
	if filename == "" {
		return nil, ErrEmptyName
	}
	if len(filename) > MaxNameLength {
		return nil, ErrNameTooLong
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := storage.ObjectKey(filename)
	if err := s.blobs.Put(ctx, key, r, size, contentType); err != nil {
		return nil, fmt.Errorf("store blob: %w", err)
	}

	created, err := s.repo.Insert(ctx, &File{
		Name:        filename,
		Size:        size,
		ContentType: contentType,
		StorageKey:  key,
		UploadedAt:  time.Now().UTC(),
		Attributes:  map[string]interface{}{},
	})
	if err != nil {
		log.Printf("file: metadata insert failed, blob %q orphaned: %v", key, err)
		return nil, fmt.Errorf("store metadata: %w", err)
	}
	return created, nil
}

// List returns one page of file records, newest first, optionally filtered
// by a case-insensitive name substring.
func (s *Service) List(ctx context.Context, search string, page, limit int64) (*Page, error) {
	files, total, err := s.repo.FindPage(ctx, search, page, limit)
	if err != nil {
		return nil, err
	}
	return &Page{Files: files, Total: total, Page: page, Limit: limit}, nil
}

// GetMetadata returns the metadata record for id. The blob store is not touched.
func (s *Service) GetMetadata(ctx context.Context, id string) (*File, error) {
	return s.repo.FindByID(ctx, id)
}

// Download returns the metadata record and an open stream over the file's
// bytes. The caller must close the stream on every exit path. A record whose
// object is gone yields ErrContentMissing, not ErrNotFound.
func (s *Service) Download(ctx context.Context, id string) (*File, io.ReadCloser, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.blobs.Get(ctx, f.StorageKey)
	if errors.Is(err, storage.ErrObjectNotFound) {
		log.Printf("file: record %s references missing object %q", id, f.StorageKey)
		return nil, nil, ErrContentMissing
	}
	if err != nil {
		return nil, nil, fmt.Errorf("fetch blob: %w", err)
	}
	return f, rc, nil
}

// DownloadLink returns a presigned URL for downloading the file directly
// from the object store, valid for a short window.
func (s *Service) DownloadLink(ctx context.Context, id string) (*DownloadLink, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u, err := s.blobs.PresignedURL(ctx, f.StorageKey, presignExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign blob: %w", err)
	}
	return &DownloadLink{URL: u, ExpiresIn: int64(presignExpiry.Seconds())}, nil
}

// Rename updates a record's display name and returns the refreshed record.
// Every other field is immutable.
func (s *Service) Rename(ctx context.Context, id, newName string) (*File, error) {
	if newName == "" {
		return nil, ErrEmptyName
	}
	if len(newName) > MaxNameLength {
		return nil, ErrNameTooLong
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.UpdateName(ctx, id, newName)
}

// Delete removes a file: blob first, record second — the mirror of Upload's
// ordering. If the blob delete fails the record is kept and the error
// surfaces, so the whole operation can be retried; a crash between the two
// steps leaves an orphaned blob, never a record pointing at nothing.
func (s *Service) Delete(ctx context.Context, id string) error {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, f.StorageKey); err != nil {
		return fmt.Errorf("delete blob: %w", err)
	}
	return s.repo.Delete(ctx, id)
}

// IsNotFound returns true when the error indicates a missing file record.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
