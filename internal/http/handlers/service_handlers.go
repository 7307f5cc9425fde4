package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/bg-remover/internal/config"
	"github.com/phambaophuc/bg-remover/internal/models"
	"github.com/phambaophuc/bg-remover/internal/services/queue"
	"github.com/phambaophuc/bg-remover/internal/services/session"
	"github.com/phambaophuc/bg-remover/internal/services/storage"
)

const (
	serviceName    = "BG Remover API"
	serviceVersion = "1.0.0"

	statusHealthy       = "healthy"
	statusUnhealthy     = "unhealthy"
	statusNotConfigured = "not configured"
)

var endpoints = map[string]string{
	"POST /remove":       "Remove the background of one image (returns PNG or WEBP)",
	"POST /remove/batch": "Remove the background of several images",
	"GET /download/<id>": "Download a processed image",
	"GET /health":        "Health check",
}

type ServiceHandler struct {
	sessions *session.Provider
	storage  *storage.StorageService
	queue    *queue.QueueService
	config   *config.Config
}

// NewServiceHandler builds the descriptor and health handlers. queue may be nil.
func NewServiceHandler(
	sessions *session.Provider,
	storage *storage.StorageService,
	queue *queue.QueueService,
	config *config.Config,
) *ServiceHandler {
	return &ServiceHandler{
		sessions: sessions,
		storage:  storage,
		queue:    queue,
		config:   config,
	}
}

func (h *ServiceHandler) Home(c *gin.Context) {
	c.JSON(http.StatusOK, models.ServiceInfo{
		Name:      serviceName,
		Version:   serviceVersion,
		Model:     h.sessions.ModelName(),
		Backend:   h.config.Model.Backend,
		Endpoints: endpoints,
	})
}

// HealthCheck does not load the model; loaded reports whether it already is.
func (h *ServiceHandler) HealthCheck(c *gin.Context) {
	services := h.storage.HealthCheck(c.Request.Context())

	if h.queue == nil {
		services["rabbitmq"] = statusNotConfigured
	} else {
		services["rabbitmq"] = h.queue.HealthCheck()
		if backlog, err := h.queue.Backlog(); err == nil {
			services["rabbitmq_backlog"] = strconv.Itoa(backlog)
		}
	}

	overall := calculateOverallHealth(services)
	statusCode := http.StatusOK
	if overall == statusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, models.HealthCheck{
		Status:   overall,
		Model:    h.sessions.ModelName(),
		Loaded:   h.sessions.Loaded(),
		Services: services,
	})
}

// calculateOverallHealth only fails on the output directory; the other
// services degrade without stopping background removal.
func calculateOverallHealth(services map[string]string) string {
	if services["output_dir"] != statusHealthy {
		return statusUnhealthy
	}
	return statusHealthy
}
