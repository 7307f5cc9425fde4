package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/phambaophuc/bg-remover/internal/models"
	"github.com/phambaophuc/bg-remover/pkg/utils"
	"go.uber.org/zap"
)

// lookupOrder is the order extensions are probed in when no record exists.
var lookupOrder = []models.Format{models.FormatPNG, models.FormatWebP}

// Save writes {id}.{format} once. An existing file is never overwritten.
func (s *StorageService) Save(ctx context.Context, id string, format models.Format, data []byte) error {
	if !utils.ValidID(id) {
		return fmt.Errorf("invalid id %q", id)
	}

	filename := utils.OutputFilename(id, format.Extension())
	path := filepath.Join(s.dir, filename)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", filename, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("write %s: %w", filename, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filename, err)
	}

	record := models.ImageRecord{
		ID:        id,
		Format:    format,
		Size:      int64(len(data)),
		CreatedAt: time.Now(),
	}
	if s.index != nil {
		if err := s.index.Put(ctx, record); err != nil {
			s.logger.Warn("Failed to index image", zap.String("id", id), zap.Error(err))
		}
	}
	if s.mirror != nil {
		if err := s.mirror.Upload(ctx, filename, bytes.NewReader(data), format.ContentType()); err != nil {
			s.logger.Warn("Failed to mirror image", zap.String("id", id), zap.Error(err))
		}
	}

	return nil
}

// Find returns the stored image for id. The index is consulted first, then
// .png and .webp are probed, then the mirror.
func (s *StorageService) Find(ctx context.Context, id string) (*models.StoredImage, error) {
	if !utils.ValidID(id) {
		return nil, ErrNotFound
	}

	if s.index != nil {
		record, err := s.index.Get(ctx, id)
		if err != nil {
			s.logger.Warn("Index lookup failed, probing files", zap.String("id", id), zap.Error(err))
		}
		if record != nil {
			if img, err := s.readLocal(id, record.Format); err == nil {
				return img, nil
			}
		}
	}

	for _, format := range lookupOrder {
		img, err := s.readLocal(id, format)
		if err == nil {
			return img, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	if s.mirror != nil {
		for _, format := range lookupOrder {
			filename := utils.OutputFilename(id, format.Extension())
			data, err := s.mirror.Download(ctx, filename)
			if err != nil {
				continue
			}
			return &models.StoredImage{ID: id, Format: format, Filename: filename, Data: data}, nil
		}
	}

	return nil, ErrNotFound
}

func (s *StorageService) readLocal(id string, format models.Format) (*models.StoredImage, error) {
	filename := utils.OutputFilename(id, format.Extension())
	data, err := os.ReadFile(filepath.Join(s.dir, filename))
	if err != nil {
		return nil, err
	}
	return &models.StoredImage{ID: id, Format: format, Filename: filename, Data: data}, nil
}
