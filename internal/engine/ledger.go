package engine

import (
	"slices"
	"time"

	"prizedraw/internal/models"
)

// Result is the outcome of one completed draw.
type Result struct {
	Winners []models.Winner
	Fills   []models.PrizeFill
	DrawnAt time.Time
}

// Ledger keeps the most recent draw's result. Entries are never edited after Set;
// the next draw replaces them wholesale.
type Ledger struct {
	result *Result
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Set stores the result of a draw, replacing any previous one.
func (l *Ledger) Set(r Result) {
	l.result = &Result{
		Winners: slices.Clone(r.Winners),
		Fills:   slices.Clone(r.Fills),
		DrawnAt: r.DrawnAt,
	}
}

// Clear drops the stored result.
func (l *Ledger) Clear() {
	l.result = nil
}

// Empty reports whether no draw has been recorded.
func (l *Ledger) Empty() bool {
	return l.result == nil
}

// All returns every winner in draw order.
func (l *Ledger) All() []models.Winner {
	if l.result == nil {
		return nil
	}
	return slices.Clone(l.result.Winners)
}

// ByPrize returns the winners of one prize in draw order: main winners first, then backups.
func (l *Ledger) ByPrize(prizeID string) []models.Winner {
	return l.filter(func(w models.Winner) bool { return w.Prize.ID == prizeID })
}

// ByStatus returns either the backups or the main winners across all prizes.
func (l *Ledger) ByStatus(backup bool) []models.Winner {
	return l.filter(func(w models.Winner) bool { return w.IsBackup == backup })
}

// Fills returns per-prize fill counts for the recorded draw.
func (l *Ledger) Fills() []models.PrizeFill {
	if l.result == nil {
		return nil
	}
	return slices.Clone(l.result.Fills)
}

// DrawnAt returns when the recorded draw completed.
func (l *Ledger) DrawnAt() (time.Time, bool) {
	if l.result == nil {
		return time.Time{}, false
	}
	return l.result.DrawnAt, true
}

func (l *Ledger) filter(keep func(models.Winner) bool) []models.Winner {
	if l.result == nil {
		return nil
	}
	var out []models.Winner
	for _, w := range l.result.Winners {
		if keep(w) {
			out = append(out, w)
		}
	}
	return out
}
