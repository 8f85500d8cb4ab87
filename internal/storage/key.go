package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ObjectKey derives a unique object key for a file with the given name,
// of the shape "files/<year>/<month>/<day>/<uuid>-<filename>". The date
// partition keeps any single prefix from growing unbounded; the random
// UUID guarantees keys are never reused across uploads of the same name.
func ObjectKey(filename string) string {
	datePath := time.Now().UTC().Format("2006/01/02")
	return fmt.Sprintf("files/%s/%s-%s", datePath, uuid.NewString(), sanitizeName(filename))
}

// sanitizeName strips path separators from a client-supplied filename so it
// cannot introduce extra key hierarchy.
func sanitizeName(name string) string {
	name = strings.ReplaceAll(name, "/", "_")
	return strings.ReplaceAll(name, "\\", "_")
}
