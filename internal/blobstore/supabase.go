package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	supabase "github.com/nedpals/supabase-go"
)

// Supabase stores files in a Supabase Storage bucket
type Supabase struct {
	bucket    string
	upload    func(path string, data io.Reader, contentType string) (key, message string)
	remove    func(paths []string) (message string)
	publicURL func(path string) string
}

// NewSupabase creates a store backed by the given bucket
func NewSupabase(supabaseURL, supabaseKey, bucket string) (*Supabase, error) {
	if supabaseURL == "" || supabaseKey == "" {
		return nil, fmt.Errorf("supabase URL and key are required for the supabase blob backend")
	}
	if bucket == "" {
		return nil, fmt.Errorf("supabase bucket is required")
	}

	// CreateClient returns *supabase.Client (no error)
	client := supabase.CreateClient(supabaseURL, supabaseKey)
	return &Supabase{
		bucket: bucket,
		upload: func(path string, data io.Reader, contentType string) (string, string) {
			resp := client.Storage.From(bucket).Upload(path, data, &supabase.FileUploadOptions{ContentType: contentType})
			return resp.Key, resp.Message
		},
		remove: func(paths []string) string {
			resp := client.Storage.From(bucket).Remove(paths)
			return resp.Message
		},
		publicURL: func(path string) string {
			return client.Storage.From(bucket).GetPublicUrl(path).SignedUrl
		},
	}, nil
}

// Store implements Store
func (s *Supabase) Store(ctx context.Context, content []byte, meta Metadata) (obj Object, err error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}
	// the SDK panics on transport errors
	defer func() {
		if r := recover(); r != nil {
			obj, err = Object{}, fmt.Errorf("supabase upload failed: %v", r)
		}
	}()

	path := ObjectKey(meta)
	key, message := s.upload(path, bytes.NewReader(content), meta.ContentType)
	if key == "" {
		if message == "" {
			message = "empty response"
		}
		return Object{}, fmt.Errorf("supabase upload failed: %s", message)
	}
	return Object{URL: s.publicURL(path), ID: path}, nil
}

// Delete implements Store
func (s *Supabase) Delete(ctx context.Context, id string) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("supabase delete failed: %v", r)
		}
	}()

	message := s.remove([]string{id})
	if message != "" && !strings.Contains(strings.ToLower(message), "not found") {
		return fmt.Errorf("supabase delete of %s failed: %s", id, message)
	}
	return nil
}
