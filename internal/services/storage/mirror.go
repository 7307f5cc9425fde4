package storage

import (
	"context"
	"fmt"
	"io"

	storage_go "github.com/supabase-community/storage-go"
)

const mirrorPrefix = "processed/"

// Mirror is a remote copy of the output directory.
type Mirror interface {
	Upload(ctx context.Context, filename string, data io.Reader, contentType string) error
	Download(ctx context.Context, filename string) ([]byte, error)
	Ping(ctx context.Context) error
}

type SupabaseMirror struct {
	sbClient *storage_go.Client
	bucket   string
}

func NewSupabaseMirror(client *storage_go.Client, bucket string) *SupabaseMirror {
	return &SupabaseMirror{sbClient: client, bucket: bucket}
}

func (m *SupabaseMirror) Upload(ctx context.Context, filename string, data io.Reader, contentType string) error {
	_, err := m.sbClient.UploadFile(m.bucket, mirrorPrefix+filename, data, storage_go.FileOptions{
		ContentType: &contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload to supabase: %w", err)
	}
	return nil
}

func (m *SupabaseMirror) Download(ctx context.Context, filename string) ([]byte, error) {
	data, err := m.sbClient.DownloadFile(m.bucket, mirrorPrefix+filename)
	if err != nil {
		return nil, fmt.Errorf("failed to download from supabase: %w", err)
	}
	return data, nil
}

func (m *SupabaseMirror) Ping(ctx context.Context) error {
	_, err := m.sbClient.ListFiles(m.bucket, "", storage_go.FileSearchOptions{Limit: 1})
	return err
}
