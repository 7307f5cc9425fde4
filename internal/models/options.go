package models

import "strings"

type Format string

const (
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
)

// ParseFormat maps a request value onto a supported output format.
// Anything other than webp falls back to PNG.
func ParseFormat(value string) Format {
	if strings.EqualFold(strings.TrimSpace(value), string(FormatWebP)) {
		return FormatWebP
	}
	return FormatPNG
}

func (f Format) Extension() string {
	return string(f)
}

func (f Format) ContentType() string {
	if f == FormatWebP {
		return "image/webp"
	}
	return "image/png"
}

// ProcessingOptions are derived once per request and never modified afterwards.
type ProcessingOptions struct {
	ModelName    string `json:"model"`
	AlphaMatting bool   `json:"alpha_matting"`
	OutputFormat Format `json:"format"`
	ReturnInline bool   `json:"base64"`
}

// DefaultOptions returns the options used when a request sets nothing.
func DefaultOptions(modelName string) ProcessingOptions {
	return ProcessingOptions{
		ModelName:    modelName,
		OutputFormat: FormatPNG,
	}
}

// BatchOptions is the reduced option set every batch item runs with.
func BatchOptions(modelName string) ProcessingOptions {
	return DefaultOptions(modelName)
}

// ImageInput is one uploaded image. Err is set when the upload itself could not be read.
type ImageInput struct {
	Filename string
	Data     []byte
	Err      error
}
