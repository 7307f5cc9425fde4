package storage

import (
	"errors"
	"fmt"
	"os"

	"github.com/phambaophuc/bg-remover/internal/config"
	"github.com/redis/go-redis/v9"
	storage_go "github.com/supabase-community/storage-go"
	"go.uber.org/zap"
)

var ErrNotFound = errors.New("file not found")

// StorageService is the Output Store: a flat directory of {id}.{ext} files,
// optionally backed by a Redis metadata index and a Supabase mirror.
type StorageService struct {
	dir    string
	index  Index
	mirror Mirror
	logger *zap.Logger
}

// New creates the output directory if needed. index and mirror may be nil.
func New(dir string, index Index, mirror Mirror, logger *zap.Logger) (*StorageService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return &StorageService{
		dir:    dir,
		index:  index,
		mirror: mirror,
		logger: logger,
	}, nil
}

// NewStorageService builds the store from configuration, enabling Redis and
// Supabase only when they are configured.
func NewStorageService(cfg *config.Config, logger *zap.Logger) (*StorageService, error) {
	var index Index
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		index = NewRedisIndex(redisClient, cfg.Storage.Retention)
	}

	var mirror Mirror
	if cfg.Supabase.URL != "" && cfg.Supabase.BUCKET != "" {
		sbClient := storage_go.NewClient(cfg.Supabase.URL+"/storage/v1", cfg.Supabase.KEY, nil)
		mirror = NewSupabaseMirror(sbClient, cfg.Supabase.BUCKET)
	}

	return New(cfg.Storage.OutputDir, index, mirror, logger)
}

func (s *StorageService) Dir() string {
	return s.dir
}

func (s *StorageService) Close() error {
	if s.index != nil {
		return s.index.Close()
	}
	return nil
}
