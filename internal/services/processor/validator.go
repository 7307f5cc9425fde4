package processor

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/phambaophuc/bg-remover/internal/apperr"
	"github.com/phambaophuc/bg-remover/internal/models"
)

// InputLimits bound what an upload may be. Zero values disable a check.
type InputLimits struct {
	MaxSize      int64
	AllowedTypes []string
}

// ValidateInput rejects uploads that are empty, too large, or not sniffed as an
// allowed image type. Whether a recognised image actually decodes is left to the engine.
func (p *ImageProcessor) ValidateInput(input models.ImageInput, limits InputLimits) error {
	if len(input.Data) == 0 {
		return apperr.BadRequest("image is empty")
	}
	if limits.MaxSize > 0 && int64(len(input.Data)) > limits.MaxSize {
		return apperr.BadRequest(fmt.Sprintf("file size %d exceeds maximum allowed size %d", len(input.Data), limits.MaxSize))
	}
	if len(limits.AllowedTypes) > 0 {
		detected := mimetype.Detect(input.Data)
		for _, allowed := range limits.AllowedTypes {
			if detected.Is(allowed) {
				return nil
			}
		}
		return apperr.BadRequest(fmt.Sprintf("unsupported image type %s", detected.String()))
	}
	return nil
}
