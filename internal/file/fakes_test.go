package file

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/filedrive/service/internal/storage"
)

// fakeRepo is an in-memory MetadataRepo with the same contract as the Mongo
// repository: hex id validation before lookup, upload-time-descending pages,
// name-only updates.
type fakeRepo struct {
	files     map[string]File
	insertErr error
	findErr   error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{files: make(map[string]File)}
}

func (r *fakeRepo) Insert(_ context.Context, f *File) (*File, error) {
	if r.insertErr != nil {
		return nil, r.insertErr
	}
	f.ID = primitive.NewObjectID()
	r.files[f.ID.Hex()] = *f
	return f, nil
}

func (r *fakeRepo) FindByID(_ context.Context, id string) (*File, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, ErrInvalidID
	}
	f, ok := r.files[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &f, nil
}

func (r *fakeRepo) FindPage(_ context.Context, search string, page, limit int64) ([]File, int64, error) {
	matched := make([]File, 0, len(r.files))
	for _, f := range r.files {
		if search == "" || strings.Contains(strings.ToLower(f.Name), strings.ToLower(search)) {
			matched = append(matched, f)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].UploadedAt.After(matched[j].UploadedAt)
	})

	total := int64(len(matched))
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (r *fakeRepo) UpdateName(_ context.Context, id, name string) (*File, error) {
	f, err := r.FindByID(context.Background(), id)
	if err != nil {
		return nil, err
	}
	f.Name = name
	r.files[id] = *f
	return f, nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	if _, err := r.FindByID(context.Background(), id); err != nil {
		return err
	}
	delete(r.files, id)
	return nil
}

// fakeStorage is an in-memory storage.Storage with MinIO's observable
// behavior: missing keys fail Get with ErrObjectNotFound, Delete of a
// missing key succeeds.
type fakeStorage struct {
	objects map[string][]byte
	putErr  error
	getErr  error
	delErr  error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (s *fakeStorage) Put(_ context.Context, key string, reader io.Reader, size int64, _ string) error {
	if s.putErr != nil {
		return s.putErr
	}
	data, err := io.ReadAll(io.LimitReader(reader, size))
	if err != nil {
		return err
	}
	s.objects[key] = data
	return nil
}

func (s *fakeStorage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	data, ok := s.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeStorage) Delete(_ context.Context, key string) error {
	if s.delErr != nil {
		return s.delErr
	}
	delete(s.objects, key)
	return nil
}

func (s *fakeStorage) PresignedURL(_ context.Context, key string, expires time.Duration) (string, error) {
	return "https://blobs.test/" + key + "?sig=fake", nil
}
