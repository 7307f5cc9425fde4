package storage

import (
	"context"
	"os"
)

// HealthCheck checks the output directory, Redis and Supabase
func (s *StorageService) HealthCheck(ctx context.Context) map[string]string {
	status := make(map[string]string)

	if info, err := os.Stat(s.dir); err != nil {
		status["output_dir"] = "unhealthy: " + err.Error()
	} else if !info.IsDir() {
		status["output_dir"] = "unhealthy: not a directory"
	} else {
		status["output_dir"] = "healthy"
	}

	if s.index == nil {
		status["redis"] = "not configured"
	} else if err := s.index.Ping(ctx); err != nil {
		status["redis"] = "unhealthy: " + err.Error()
	} else {
		status["redis"] = "healthy"
	}

	if s.mirror == nil {
		status["supabase"] = "not configured"
	} else if err := s.mirror.Ping(ctx); err != nil {
		status["supabase"] = "unhealthy: " + err.Error()
	} else {
		status["supabase"] = "healthy"
	}

	return status
}
