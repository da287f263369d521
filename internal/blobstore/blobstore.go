// Package blobstore stores uploaded application files.
package blobstore

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a stored object does not exist
var ErrNotFound = errors.New("blob not found")

// Metadata describes an uploaded file
type Metadata struct {
	FileName      string
	ContentType   string
	ApplicationID uuid.UUID
	Section       string
}

// Object identifies a stored file
type Object struct {
	URL string `json:"url"`
	ID  string `json:"id"`
}

// Store is the blob storage contract used by the application service
type Store interface {
	Store(ctx context.Context, content []byte, meta Metadata) (Object, error)
	Delete(ctx context.Context, id string) error
}

// ObjectKey builds the storage key of a new upload. Keys are unique per
// upload so a replacement never overwrites the file it supersedes.
func ObjectKey(meta Metadata) string {
	section := meta.Section
	if section == "" {
		section = "misc"
	}
	return path.Join("applications", meta.ApplicationID.String(), section, uuid.NewString()+extension(meta))
}

// ApplicationIDFromKey extracts the owning application id from a key
// produced by ObjectKey
func ApplicationIDFromKey(key string) (uuid.UUID, bool) {
	parts := strings.Split(strings.TrimPrefix(key, "/"), "/")
	if len(parts) < 4 || parts[0] != "applications" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(parts[1])
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func extension(meta Metadata) string {
	if meta.ContentType != "" {
		if m := mimetype.Lookup(meta.ContentType); m != nil && m.Extension() != "" {
			return m.Extension()
		}
	}
	ext := strings.ToLower(path.Ext(meta.FileName))
	if len(ext) > 1 && len(ext) <= 6 {
		return ext
	}
	return ".bin"
}
