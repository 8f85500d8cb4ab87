// Package file manages stored files: their metadata records, the coordination
// between the object store holding the bytes and the document store holding
// the records, and the HTTP endpoints exposing the file lifecycle.
package file

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxNameLength bounds display filenames, at upload and rename alike.
const MaxNameLength = 255

// File is the metadata record for one stored blob. Every record owns exactly
// one object in the blob store, referenced by StorageKey; the key is internal
// and never serialized to clients. All fields except Name are write-once.
type File struct {
	ID          primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	Name        string                 `bson:"name" json:"name"`
	Size        int64                  `bson:"size" json:"size"`
	ContentType string                 `bson:"content_type" json:"contentType"`
	StorageKey  string                 `bson:"storage_key" json:"-"`
	UploadedAt  time.Time              `bson:"uploaded_at" json:"uploadedAt"`
	OwnerID     *string                `bson:"owner_id" json:"ownerId,omitempty"`
	Attributes  map[string]interface{} `bson:"attributes" json:"-"`
}

// Page is one page of file records plus the total count of records matching
// the query across all pages.
type Page struct {
	Files []File `json:"files"`
	Total int64  `json:"total"`
	Page  int64  `json:"page"`
	Limit int64  `json:"limit"`
}

// RenameRequest is the body of a metadata update.
type RenameRequest struct {
	Name string `json:"name"`
}

// DownloadLink carries a presigned URL for direct download from the object store.
type DownloadLink struct {
	URL       string `json:"url"`
	ExpiresIn int64  `json:"expiresIn"` // seconds
}
