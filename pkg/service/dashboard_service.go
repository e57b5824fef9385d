package service

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/openpaw/pawdeck/pkg/event"
	"github.com/openpaw/pawdeck/pkg/gateway"
	"github.com/openpaw/pawdeck/pkg/models"
)

// DashboardService probes backend health and aggregate counters.
type DashboardService struct {
	viewBase
	gw DashboardGateway

	mu    sync.RWMutex
	state models.DashboardView
}

func NewDashboardService(gw DashboardGateway, opts Options) *DashboardService {
	s := &DashboardService{gw: gw, state: models.DashboardView{Backend: models.BackendOffline}}
	s.init("dashboard", opts)
	return s
}

func (s *DashboardService) Activate(ctx context.Context) error {
	return s.Refresh(ctx)
}

// Refresh runs the health probe and the stats request concurrently. A failed
// stats request keeps the previous counters.
func (s *DashboardService) Refresh(ctx context.Context) error {
	ctx, cancel := s.bind(ctx)
	defer cancel()

	var (
		g       errgroup.Group
		backend string
		stats   models.DashboardStats
		statsOK bool
	)
	g.Go(func() error {
		backend = healthLabel(s.gw.Health(ctx))
		return nil
	})
	g.Go(func() error {
		st, err := s.gw.DashboardStats(ctx)
		if err != nil {
			s.logger.Warn("dashboard stats failed", "error", err)
			return err
		}
		stats, statsOK = st, true
		return nil
	})
	err := g.Wait()

	s.mu.Lock()
	s.state.Backend = backend
	if statsOK {
		s.state.Stats = stats
		s.state.VectorDBOnline = stats.DocsCount > 0
	}
	s.mu.Unlock()
	s.emit(event.DashboardChangedEvent{Backend: backend})
	return err
}

// healthLabel maps the probe result: any 2xx is Online, an HTTP error is
// Degraded and no response at all is Offline.
func healthLabel(_ models.HealthResponse, err error) string {
	if err == nil {
		return models.BackendOnline
	}
	if gerr, ok := gateway.AsError(err); ok && gerr.Kind == gateway.KindServer {
		return models.BackendDegraded
	}
	return models.BackendOffline
}

func (s *DashboardService) View() models.DashboardView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v := s.state
	v.Error = s.LastError()
	return v
}

func (s *DashboardService) Close() {
	s.endLifetime()
	s.mu.Lock()
	s.state = models.DashboardView{Backend: models.BackendOffline}
	s.mu.Unlock()
}
