package engine

import (
	"slices"

	"prizedraw/internal/models"
)

// Pool holds the candidate participants for the next draw.
// It keeps records in the order they were loaded and performs no dedup.
type Pool struct {
	participants []models.Participant
	frozen       bool
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	return &Pool{}
}

// Load replaces the whole pool with records.
func (p *Pool) Load(records []models.Participant) error {
	if p.frozen {
		return ErrFrozen
	}
	p.participants = slices.Clone(records)
	return nil
}

// Size returns the number of participants in the pool.
func (p *Pool) Size() int {
	return len(p.participants)
}

// Snapshot returns a copy of the pool in load order.
func (p *Pool) Snapshot() []models.Participant {
	return slices.Clone(p.participants)
}

func (p *Pool) clear() {
	p.participants = nil
}
