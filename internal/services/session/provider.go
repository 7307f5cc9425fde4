package session

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Provider owns the single process-wide session. It is built on first use and
// never torn down or refreshed.
type Provider struct {
	name    string
	factory Factory
	logger  *zap.Logger

	mu      sync.Mutex
	session Session
	loaded  atomic.Bool
}

func NewProvider(name string, factory Factory, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		name:    name,
		factory: factory,
		logger:  logger,
	}
}

// Get returns the cached session, constructing it if this is the first call.
// Concurrent first callers block on the same construction. A failed
// construction is returned to the caller and the next call tries again.
func (p *Provider) Get() (Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session != nil {
		return p.session, nil
	}

	p.logger.Info("Loading model", zap.String("model", p.name))
	start := time.Now()

	s, err := p.factory(p.name)
	if err != nil {
		p.logger.Error("Failed to load model", zap.String("model", p.name), zap.Error(err))
		return nil, fmt.Errorf("load model %s: %w", p.name, err)
	}

	p.session = s
	p.loaded.Store(true)
	p.logger.Info("Model loaded",
		zap.String("model", p.name),
		zap.Duration("took", time.Since(start)))
	return s, nil
}

// Preload builds the session eagerly, e.g. at startup.
func (p *Provider) Preload() error {
	_, err := p.Get()
	return err
}

func (p *Provider) ModelName() string {
	return p.name
}

// Loaded never waits on a construction in progress.
func (p *Provider) Loaded() bool {
	return p.loaded.Load()
}
