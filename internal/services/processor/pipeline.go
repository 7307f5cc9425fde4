package processor

import (
	"context"
	"encoding/base64"
	"fmt"
	"math"
	"time"

	"github.com/phambaophuc/bg-remover/internal/apperr"
	"github.com/phambaophuc/bg-remover/internal/models"
	"github.com/phambaophuc/bg-remover/internal/services/session"
	"github.com/phambaophuc/bg-remover/pkg/utils"
	"go.uber.org/zap"
)

type SessionProvider interface {
	Get() (session.Session, error)
	ModelName() string
}

type ImageStore interface {
	Save(ctx context.Context, id string, format models.Format, data []byte) error
}

type EventPublisher interface {
	PublishProcessed(ctx context.Context, event models.ProcessedEvent) error
}

type ImageProcessor struct {
	sessions SessionProvider
	store    ImageStore
	events   EventPublisher
	logger   *zap.Logger
	newID    func() string
}

// NewImageProcessor wires the pipeline. events may be nil.
func NewImageProcessor(sessions SessionProvider, store ImageStore, events EventPublisher, logger *zap.Logger) *ImageProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImageProcessor{
		sessions: sessions,
		store:    store,
		events:   events,
		logger:   logger,
		newID:    utils.GenerateID,
	}
}

// Process removes the background of one image and stores the result.
// Every failure comes back as a processing error carrying the cause's message.
func (p *ImageProcessor) Process(ctx context.Context, input models.ImageInput, opts models.ProcessingOptions) (*models.ProcessedImage, error) {
	start := time.Now()

	sess, err := p.sessions.Get()
	if err != nil {
		return nil, apperr.Processing(err)
	}

	if opts.ModelName != "" && opts.ModelName != sess.Name() {
		p.logger.Warn("Requested model ignored, using the loaded model",
			zap.String("requested", opts.ModelName),
			zap.String("model", sess.Name()))
	}

	result, err := p.run(ctx, sess, input, opts, start)
	if err != nil {
		p.logger.Error("Processing failed", zap.String("filename", input.Filename), zap.Error(err))
		return nil, apperr.Processing(err)
	}
	return result, nil
}

func (p *ImageProcessor) run(ctx context.Context, sess session.Session, input models.ImageInput, opts models.ProcessingOptions, start time.Time) (*models.ProcessedImage, error) {
	removed, err := sess.Remove(ctx, input.Data, session.MattingOptions(opts.AlphaMatting))
	if err != nil {
		return nil, err
	}

	decoded, err := Decode(removed)
	if err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	rgba := ToRGBA(decoded)

	format := opts.OutputFormat
	if format != models.FormatWebP {
		format = models.FormatPNG
	}

	data, err := Encode(rgba, format)
	if err != nil {
		return nil, err
	}

	id := p.newID()
	if err := p.store.Save(ctx, id, format, data); err != nil {
		return nil, fmt.Errorf("save result: %w", err)
	}

	result := &models.ProcessedImage{
		ID:        id,
		Filename:  utils.OutputFilename(id, format.Extension()),
		Format:    format,
		Model:     sess.Name(),
		Data:      data,
		CreatedAt: time.Now(),
	}

	if opts.ReturnInline {
		pngData := data
		if format != models.FormatPNG {
			if pngData, err = Encode(rgba, models.FormatPNG); err != nil {
				return nil, err
			}
		}
		result.Inline = base64.StdEncoding.EncodeToString(pngData)
	}

	result.Elapsed = roundSeconds(time.Since(start))
	p.logger.Info("Image processed",
		zap.String("filename", input.Filename),
		zap.String("output", result.Filename),
		zap.Float64("elapsed", result.Elapsed))

	p.publish(ctx, result)
	return result, nil
}

func (p *ImageProcessor) publish(ctx context.Context, result *models.ProcessedImage) {
	if p.events == nil {
		return
	}
	if err := p.events.PublishProcessed(ctx, models.NewProcessedEvent(result)); err != nil {
		p.logger.Warn("Failed to publish processed event", zap.String("id", result.ID), zap.Error(err))
	}
}

func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}
