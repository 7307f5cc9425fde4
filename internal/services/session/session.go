package session

import (
	"context"
	"fmt"
	"sort"
)

// Alpha matting thresholds applied whenever matting is requested.
const (
	MattingForegroundThreshold = 240
	MattingBackgroundThreshold = 10
	MattingErodeSize           = 10
)

// Session is a loaded segmentation model. Remove takes encoded image bytes and
// returns an encoded image whose background is transparent.
type Session interface {
	Name() string
	Remove(ctx context.Context, data []byte, opts RemoveOptions) ([]byte, error)
}

type RemoveOptions struct {
	AlphaMatting        bool
	ForegroundThreshold int
	BackgroundThreshold int
	ErodeSize           int
}

func MattingOptions(enabled bool) RemoveOptions {
	if !enabled {
		return RemoveOptions{}
	}
	return RemoveOptions{
		AlphaMatting:        true,
		ForegroundThreshold: MattingForegroundThreshold,
		BackgroundThreshold: MattingBackgroundThreshold,
		ErodeSize:           MattingErodeSize,
	}
}

// Factory constructs a session for a model name.
type Factory func(name string) (Session, error)

var knownModels = map[string]struct{}{
	"u2net":                 {},
	"u2netp":                {},
	"u2net_human_seg":       {},
	"u2net_cloth_seg":       {},
	"silueta":               {},
	"isnet-general-use":     {},
	"isnet-anime":           {},
	"sam":                   {},
	"birefnet-general":      {},
	"birefnet-general-lite": {},
	"birefnet-portrait":     {},
	"birefnet-dis":          {},
	"birefnet-hrsod":        {},
	"birefnet-cod":          {},
	"birefnet-massive":      {},
	"bria-rmbg":             {},
}

func KnownModels() []string {
	names := make([]string, 0, len(knownModels))
	for name := range knownModels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ValidateModel(name string) error {
	if _, ok := knownModels[name]; !ok {
		return fmt.Errorf("unknown model %q", name)
	}
	return nil
}
