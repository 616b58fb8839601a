package app

import (
	"codeflow/internal/shared/observability"
	"context"
	"fmt"
	"time"
)

type HealthService struct {
	app *App
}

func NewHealthService(app *App) *HealthService {
	return &HealthService{app: app}
}

func (s *HealthService) Check(ctx context.Context) observability.HealthStatus {
	status := observability.HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}

	g := s.app.Graph.Current()
	if g.NodeCount() == 0 {
		status.Status = "degraded"
		status.Components["graph"] = "empty"
	} else {
		status.Components["graph"] = fmt.Sprintf("ok (%d files, %d edges)", g.NodeCount(), g.EdgeCount())
	}

	switch {
	case s.app.store != nil:
		if err := s.app.store.Ping(ctx); err != nil {
			status.Status = "degraded"
			status.Components["store"] = "unreachable: " + err.Error()
		} else {
			status.Components["store"] = fmt.Sprintf("ok (%d pending flushes)", s.app.flusher.Pending())
		}
	case s.app.Config.DB.Enabled:
		status.Status = "degraded"
		status.Components["store"] = "missing but enabled in config"
	}

	status.Components["suite"] = string(s.app.Suite.Mode)
	status.Components["user_model"] = fmt.Sprintf("version %d", s.app.Model.Version())
	return status
}
