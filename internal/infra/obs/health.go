package obs

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SandboxStats is the catalog snapshot reported by /readyz.
type SandboxStats struct {
	Listings int  `json:"listings"`
	Users    int  `json:"users"`
	Messages int  `json:"messages"`
	Seeded   bool `json:"seeded"`
}

// HealthHandlers serves /livez and /readyz for the sandbox. Ready gates
// readiness; Stats, when set, is echoed in the ready body so demo scripts
// can wait for the seed to land.
type HealthHandlers struct {
	Ready   func() error
	Stats   func() SandboxStats
	Started time.Time
}

func (h HealthHandlers) Livez(c *gin.Context) {
	body := gin.H{"status": "ok"}
	if !h.Started.IsZero() {
		body["uptime_seconds"] = int64(time.Since(h.Started).Seconds())
	}
	c.JSON(http.StatusOK, body)
}

func (h HealthHandlers) Readyz(c *gin.Context) {
	if h.Ready != nil {
		if err := h.Ready(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
			return
		}
	}
	body := gin.H{"status": "ready"}
	if h.Stats != nil {
		body["sandbox"] = h.Stats()
	}
	c.JSON(http.StatusOK, body)
}
