package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"sync"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/phambaophuc/bg-remover/internal/models"
	"github.com/phambaophuc/bg-remover/internal/services/session"
	"github.com/stretchr/testify/require"
)

// cutoutSession decodes the input and returns it as PNG with the left half transparent.
type cutoutSession struct {
	name  string
	calls int
	last  session.RemoveOptions
}

func (s *cutoutSession) Name() string { return s.name }

func (s *cutoutSession) Remove(ctx context.Context, data []byte, opts session.RemoveOptions) ([]byte, error) {
	s.calls++
	s.last = opts
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("cannot identify image file: %w", err)
	}
	out := imaging.Clone(img)
	b := out.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Min.X+b.Dx()/2; x++ {
			out.SetNRGBA(x, y, color.NRGBA{})
		}
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type staticProvider struct {
	sess session.Session
	err  error
}

func (p *staticProvider) Get() (session.Session, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.sess, nil
}

func (p *staticProvider) ModelName() string { return "u2net" }

type memoryStore struct {
	mu    sync.Mutex
	files map[string][]byte
	err   error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{files: make(map[string][]byte)}
}

func (m *memoryStore) Save(ctx context.Context, id string, format models.Format, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	name := id + "." + format.Extension()
	if _, ok := m.files[name]; ok {
		return errors.New("file exists")
	}
	m.files[name] = append([]byte(nil), data...)
	return nil
}

func (m *memoryStore) get(name string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[name]
	return data, ok
}

type capturePublisher struct {
	events []models.ProcessedEvent
	err    error
}

func (c *capturePublisher) PublishProcessed(ctx context.Context, event models.ProcessedEvent) error {
	c.events = append(c.events, event)
	return c.err
}

func sampleJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 10), G: uint8(y * 10), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func newTestProcessor(sess session.Session) (*ImageProcessor, *memoryStore, *capturePublisher) {
	store := newMemoryStore()
	events := &capturePublisher{}
	return NewImageProcessor(&staticProvider{sess: sess}, store, events, nil), store, events
}
