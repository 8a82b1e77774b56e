package services

import (
	"slices"
	"sync"

	"tarit-loan/internal/core/domain"
)

// ApplicationState holds the latest aggregate of one session.
type ApplicationState struct {
	mu    sync.RWMutex
	state domain.ApplicationDataState
}

func NewApplicationState() *ApplicationState {
	return &ApplicationState{}
}

// Replace swaps in a freshly aggregated state. The dashboard section survives.
func (a *ApplicationState) Replace(next domain.ApplicationDataState) {
	a.mu.Lock()
	defer a.mu.Unlock()
	next.Dashboard = a.state.Dashboard
	a.state = next
}

// SetDashboard updates only the dashboard section
func (a *ApplicationState) SetDashboard(d *domain.Dashboard) {
	a.mu.Lock()
	a.state.Dashboard = d
	a.mu.Unlock()
}

// Get returns a copy safe to hand to other goroutines
func (a *ApplicationState) Get() domain.ApplicationDataState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := a.state
	out.Liabilities = slices.Clone(a.state.Liabilities)
	out.Documents = slices.Clone(a.state.Documents)
	return out
}

func (a *ApplicationState) Reset() {
	a.mu.Lock()
	a.state = domain.ApplicationDataState{}
	a.mu.Unlock()
}
