package usecase

import "sync"

// WeekGate keeps deposits out while the weekly report is taken and the week
// is cleared, so nothing lands between the snapshot and the reset.
type WeekGate struct {
	mu sync.RWMutex
}

func NewWeekGate() *WeekGate {
	return &WeekGate{}
}

func (g *WeekGate) deposit() func() {
	g.mu.RLock()
	return g.mu.RUnlock
}

func (g *WeekGate) close() func() {
	g.mu.Lock()
	return g.mu.Unlock
}
