package processor

import (
	"context"
	"time"

	"github.com/phambaophuc/bg-remover/internal/apperr"
	"github.com/phambaophuc/bg-remover/internal/models"
	"github.com/phambaophuc/bg-remover/pkg/utils"
	"go.uber.org/zap"
)

// ProcessBatch runs every input through the reduced flow, in order, one at a
// time. A failing item is recorded and the loop moves on.
func (p *ImageProcessor) ProcessBatch(ctx context.Context, inputs []models.ImageInput) ([]models.BatchResult, error) {
	sess, err := p.sessions.Get()
	if err != nil {
		return nil, apperr.Processing(err)
	}

	opts := models.BatchOptions(p.sessions.ModelName())
	results := make([]models.BatchResult, 0, len(inputs))

	for _, input := range inputs {
		start := time.Now()

		if input.Err != nil {
			results = append(results, failedResult(input, input.Err))
			continue
		}

		img, err := p.run(ctx, sess, input, opts, start)
		if err != nil {
			p.logger.Warn("Batch item failed", zap.String("filename", input.Filename), zap.Error(err))
			results = append(results, failedResult(input, err))
			continue
		}

		results = append(results, models.BatchResult{
			Original: input.Filename,
			ID:       img.ID,
			Filename: img.Filename,
			Download: utils.DownloadPath(img.ID),
			Elapsed:  &img.Elapsed,
			Status:   models.BatchStatusOK,
		})
	}

	return results, nil
}

func failedResult(input models.ImageInput, err error) models.BatchResult {
	return models.BatchResult{
		Original: input.Filename,
		Status:   models.BatchStatusError,
		Error:    err.Error(),
	}
}
