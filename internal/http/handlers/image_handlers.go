package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/bg-remover/internal/apperr"
	"github.com/phambaophuc/bg-remover/internal/config"
	"github.com/phambaophuc/bg-remover/internal/models"
	"github.com/phambaophuc/bg-remover/internal/services/processor"
	"github.com/phambaophuc/bg-remover/internal/services/storage"
	"go.uber.org/zap"
)

const (
	fileParamKey  = "file"
	filesParamKey = "files"

	defaultFilename = "image.png"

	MsgNoImage    = "send an image as 'file' or as base64 in 'image'"
	msgNoFiles    = "send images in the 'files' field"
	msgNotFound   = "file not found"
	msgBadBase64  = "image is not valid base64"
	msgBadPayload = "invalid JSON body"

	// base64 grows data by 4/3; bodySlack covers the filename and options.
	bodySlack = 64 << 10
)

type ImageHandler struct {
	processor *processor.ImageProcessor
	storage   *storage.StorageService
	logger    *zap.Logger
	config    *config.Config
}

func NewImageHandler(
	processor *processor.ImageProcessor,
	storage *storage.StorageService,
	logger *zap.Logger,
	config *config.Config,
) *ImageHandler {
	return &ImageHandler{
		processor: processor,
		storage:   storage,
		logger:    logger,
		config:    config,
	}
}

// RemoveBackground handles POST /remove.
func (h *ImageHandler) RemoveBackground(c *gin.Context) {
	input, body, err := h.readInput(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.processor.ValidateInput(input, h.inputLimits()); err != nil {
		h.respondError(c, err)
		return
	}

	opts := h.parseOptions(c, body)
	result, err := h.processor.Process(c.Request.Context(), input, opts)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if opts.ReturnInline {
		c.JSON(http.StatusOK, models.InlineResponse{
			ID:       result.ID,
			Filename: result.Filename,
			Image:    result.Inline,
			Elapsed:  result.Elapsed,
			Model:    result.Model,
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", result.Filename))
	c.Header("X-Image-ID", result.ID)
	c.Header("X-Model", result.Model)
	c.Header("X-Processing-Time", fmt.Sprintf("%.2f", result.Elapsed))
	c.Data(http.StatusOK, result.Format.ContentType(), result.Data)
}

// BatchRemove handles POST /remove/batch.
func (h *ImageHandler) BatchRemove(c *gin.Context) {
	files, err := h.parseMultipartFiles(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	inputs := h.readFiles(files)
	results, err := h.processor.ProcessBatch(c.Request.Context(), inputs)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.BatchResponse{
		Processed: len(results),
		Results:   results,
	})
}

// Download handles GET /download/:id.
func (h *ImageHandler) Download(c *gin.Context) {
	img, err := h.storage.Find(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			err = apperr.NotFound(msgNotFound)
		}
		h.respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", img.Filename))
	c.Data(http.StatusOK, img.Format.ContentType(), img.Data)
}
