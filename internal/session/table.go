package session

import (
	"sync"
	"time"

	"github.com/playmatatu/fairway/internal/golf"
)

// ClubTable holds the club table new bags are filled from. A calibration run
// swaps it in place while sessions keep the copy they started with.
type ClubTable struct {
	mu        sync.RWMutex
	clubs     []golf.Club
	runID     string
	updatedAt time.Time
}

func NewClubTable(clubs []golf.Club, runID string) *ClubTable {
	t := &ClubTable{}
	t.Set(clubs, runID)
	return t
}

// Clubs returns a copy of the current table.
func (t *ClubTable) Clubs() []golf.Club {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]golf.Club, len(t.clubs))
	copy(out, t.clubs)
	return out
}

// RunID is the calibration run the table came from; empty for the built-in table.
func (t *ClubTable) RunID() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.runID
}

func (t *ClubTable) UpdatedAt() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.updatedAt
}

func (t *ClubTable) Set(clubs []golf.Club, runID string) {
	cp := make([]golf.Club, len(clubs))
	copy(cp, clubs)

	t.mu.Lock()
	t.clubs = cp
	t.runID = runID
	t.updatedAt = time.Now()
	t.mu.Unlock()
}
