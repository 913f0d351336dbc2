// Package health contains the health check controller.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/dropDatabas3/quicklendar/internal/http/helpers"
)

// Pinger abstracts a dependency that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Controller handles GET /healthz.
type Controller struct {
	db    Pinger
	cache Pinger
}

// NewController creates a new health controller.
func NewController(db, cache Pinger) *Controller {
	return &Controller{db: db, cache: cache}
}

// Health reports service and dependency status.
// Responds 200 when everything is up, 503 when a dependency is down.
func (c *Controller) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := map[string]string{}

	if c.db != nil {
		if err := c.db.Ping(ctx); err != nil {
			checks["database"] = "down"
			status = http.StatusServiceUnavailable
		} else {
			checks["database"] = "up"
		}
	}
	if c.cache != nil {
		if err := c.cache.Ping(ctx); err != nil {
			checks["cache"] = "down"
			status = http.StatusServiceUnavailable
		} else {
			checks["cache"] = "up"
		}
	}

	body := map[string]any{"status": "ok", "checks": checks}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	helpers.WriteJSON(w, status, body)
}
