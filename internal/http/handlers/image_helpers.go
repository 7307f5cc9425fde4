package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/bg-remover/internal/apperr"
	"github.com/phambaophuc/bg-remover/internal/models"
	"github.com/phambaophuc/bg-remover/internal/services/processor"
	"go.uber.org/zap"
)

// removeRequest is the JSON form of POST /remove.
type removeRequest struct {
	Image        *string  `json:"image"`
	Filename     string   `json:"filename"`
	Model        string   `json:"model"`
	Format       string   `json:"format"`
	AlphaMatting flexBool `json:"alpha_matting"`
	Base64       flexBool `json:"base64"`
}

// flexBool accepts a JSON boolean or a string; only true or "true" are true.
type flexBool struct {
	set   bool
	value bool
}

func (b *flexBool) UnmarshalJSON(data []byte) error {
	raw := string(bytes.TrimSpace(data))
	switch {
	case raw == "null":
		return nil
	case raw == "true" || raw == "false":
		b.set, b.value = true, raw == "true"
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		b.set, b.value = true, parseBool(s)
	default:
		b.set, b.value = true, false
	}
	return nil
}

func parseBool(value string) bool {
	return strings.EqualFold(strings.TrimSpace(value), "true")
}

// === REQUEST PARSING ===

// readInput takes the multipart `file` field, or the JSON `image` field.
func (h *ImageHandler) readInput(c *gin.Context) (models.ImageInput, *removeRequest, error) {
	contentType := c.ContentType()

	if contentType == gin.MIMEMultipartPOSTForm {
		file, header, err := c.Request.FormFile(fileParamKey)
		if err != nil {
			return models.ImageInput{}, nil, apperr.BadRequest(MsgNoImage)
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return models.ImageInput{}, nil, apperr.BadRequest(fmt.Sprintf("failed to read upload: %v", err))
		}
		filename := header.Filename
		if filename == "" {
			filename = defaultFilename
		}
		return models.ImageInput{Filename: filename, Data: data}, nil, nil
	}

	if contentType == gin.MIMEJSON {
		if limit := h.maxJSONBody(); limit > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}

		var req removeRequest
		if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return models.ImageInput{}, nil, apperr.BadRequest(fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			}
			return models.ImageInput{}, nil, apperr.BadRequest(msgBadPayload)
		}
		if req.Image == nil {
			return models.ImageInput{}, nil, apperr.BadRequest(MsgNoImage)
		}

		data, err := decodeBase64(*req.Image)
		if err != nil {
			return models.ImageInput{}, nil, apperr.BadRequest(msgBadBase64)
		}
		filename := req.Filename
		if filename == "" {
			filename = defaultFilename
		}
		return models.ImageInput{Filename: filename, Data: data}, &req, nil
	}

	return models.ImageInput{}, nil, apperr.BadRequest(MsgNoImage)
}

// maxJSONBody is the largest JSON body that can still carry a MaxFileSize image.
func (h *ImageHandler) maxJSONBody() int64 {
	if h.config.Storage.MaxFileSize <= 0 {
		return 0
	}
	return h.config.Storage.MaxFileSize*4/3 + bodySlack
}

func (h *ImageHandler) inputLimits() processor.InputLimits {
	return processor.InputLimits{
		MaxSize:      h.config.Storage.MaxFileSize,
		AllowedTypes: h.config.Storage.AllowedTypes,
	}
}

// decodeBase64 also accepts data URLs as produced by browsers.
func decodeBase64(value string) ([]byte, error) {
	if strings.HasPrefix(value, "data:") {
		if i := strings.Index(value, ","); i >= 0 {
			value = value[i+1:]
		}
	}
	return base64.StdEncoding.DecodeString(strings.TrimSpace(value))
}

// parseOptions reads options from the query string, then form fields, then the JSON body.
func (h *ImageHandler) parseOptions(c *gin.Context, body *removeRequest) models.ProcessingOptions {
	if body == nil {
		body = &removeRequest{}
	}

	opts := models.DefaultOptions(h.config.Model.Name)
	if model, ok := lookup(c, "model", body.Model); ok && model != "" {
		opts.ModelName = model
	}
	if format, ok := lookup(c, "format", body.Format); ok {
		opts.OutputFormat = models.ParseFormat(format)
	}
	opts.AlphaMatting = lookupBool(c, "alpha_matting", body.AlphaMatting)
	opts.ReturnInline = lookupBool(c, "base64", body.Base64)
	return opts
}

func lookup(c *gin.Context, key, jsonValue string) (string, bool) {
	if v, ok := c.GetQuery(key); ok {
		return v, true
	}
	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		if v, ok := c.GetPostForm(key); ok {
			return v, true
		}
	}
	if jsonValue != "" {
		return jsonValue, true
	}
	return "", false
}

func lookupBool(c *gin.Context, key string, jsonValue flexBool) bool {
	if v, ok := lookup(c, key, ""); ok {
		return parseBool(v)
	}
	return jsonValue.set && jsonValue.value
}

func (h *ImageHandler) parseMultipartFiles(c *gin.Context) ([]*multipart.FileHeader, error) {
	if c.ContentType() != gin.MIMEMultipartPOSTForm {
		return nil, apperr.BadRequest(msgNoFiles)
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, apperr.BadRequest(fmt.Sprintf("failed to parse form data: %v", err))
	}

	files := form.File[filesParamKey]
	if len(files) == 0 {
		return nil, apperr.BadRequest(msgNoFiles)
	}
	return files, nil
}

// === FILE OPERATIONS ===

// readFiles never fails as a whole; an unreadable or oversized upload is carried as that item's error.
func (h *ImageHandler) readFiles(files []*multipart.FileHeader) []models.ImageInput {
	inputs := make([]models.ImageInput, 0, len(files))
	for _, fh := range files {
		input := models.ImageInput{Filename: fh.Filename}

		data, err := readFile(fh)
		if err != nil {
			input.Err = err
		} else {
			input.Data = data
			input.Err = h.processor.ValidateInput(input, h.inputLimits())
		}
		inputs = append(inputs, input)
	}
	return inputs
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return data, nil
}

// === RESPONSE HANDLING ===

func (h *ImageHandler) respondError(c *gin.Context, err error) {
	status := apperr.StatusCode(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	_ = c.Error(err)
	c.JSON(status, models.ErrorResponse{Error: err.Error()})
}
