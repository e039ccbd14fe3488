package server

import (
	"net/http"
	"time"

	"github.com/spf13/afero"
)

// HealthStatus represents the overall health of the process.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// ComponentStatus represents the health of an individual component.
type ComponentStatus string

const (
	ComponentStatusUp   ComponentStatus = "up"
	ComponentStatusDown ComponentStatus = "down"
)

// Health is the body of GET /health on the ops listener.
type Health struct {
	Status     HealthStatus               `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Components map[string]ComponentHealth `json:"components"`
}

type ComponentHealth struct {
	Status  ComponentStatus `json:"status"`
	Message string          `json:"message,omitempty"`
	Details any             `json:"details,omitempty"`
}

// StorageDetails summarizes the upload directory contents.
type StorageDetails struct {
	Path      string `json:"path"`
	Files     int    `json:"files"`
	UsedBytes int64  `json:"used_bytes"`
}

// checkStorage reports whether the upload directory exists and what it holds.
func (s *UploadStore) checkStorage() ComponentHealth {
	info, err := s.fs.Stat(s.dir)
	if err != nil {
		return ComponentHealth{Status: ComponentStatusDown, Message: "upload dir unavailable: " + err.Error()}
	}
	if !info.IsDir() {
		return ComponentHealth{Status: ComponentStatusDown, Message: "upload dir is not a directory"}
	}

	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return ComponentHealth{Status: ComponentStatusDown, Message: "upload dir unreadable: " + err.Error()}
	}

	details := StorageDetails{Path: s.dir}
	for _, e := range entries {
		if e.Mode().IsRegular() {
			details.Files++
			details.UsedBytes += e.Size()
		}
	}
	return ComponentHealth{Status: ComponentStatusUp, Details: details}
}

func healthHandler(store *UploadStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := Health{
			Status:     HealthStatusHealthy,
			Timestamp:  time.Now().UTC(),
			Components: map[string]ComponentHealth{"storage": store.checkStorage()},
		}
		for _, c := range h.Components {
			if c.Status == ComponentStatusDown {
				h.Status = HealthStatusUnhealthy
			}
		}

		status := http.StatusOK
		if h.Status == HealthStatusUnhealthy {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, h)
	}
}

// liveHandler answers as long as the process is running.
func liveHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}
