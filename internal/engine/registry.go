package engine

import (
	"slices"
	"strings"

	"github.com/google/uuid"

	"prizedraw/internal/models"
)

// PrizeUpdate carries the fields to change on a registered prize. Nil fields are left alone.
type PrizeUpdate struct {
	Name        *string
	WinnerCount *int
	BackupCount *int
}

// Registry holds the prizes of a draw in insertion order.
// That order is the order in which the allocation fills prizes.
type Registry struct {
	prizes []models.Prize
	frozen bool
	newID  func() string
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithIDGenerator overrides how prize ids are minted.
func WithIDGenerator(fn func() string) RegistryOption {
	return func(r *Registry) {
		r.newID = fn
	}
}

// NewRegistry creates an empty registry that mints UUID prize ids.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{newID: uuid.NewString}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add registers a new prize at the end of the allocation order.
// Counts below their minimum are clamped rather than rejected.
func (r *Registry) Add(name string, winnerCount, backupCount int) (models.Prize, error) {
	if r.frozen {
		return models.Prize{}, ErrFrozen
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Prize{}, &ValidationError{Field: "name", Reason: "prize name must not be blank"}
	}

	prize := models.Prize{
		ID:          r.newID(),
		Name:        name,
		WinnerCount: max(winnerCount, 1),
		BackupCount: max(backupCount, 0),
	}
	r.prizes = append(r.prizes, prize)
	return prize, nil
}

// Update applies u to the prize with the given id. An unknown id is a no-op.
func (r *Registry) Update(id string, u PrizeUpdate) error {
	if r.frozen {
		return ErrFrozen
	}
	i := r.indexOf(id)
	if i < 0 {
		return nil
	}

	updated := r.prizes[i]
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return &ValidationError{Field: "name", Reason: "prize name must not be blank"}
		}
		updated.Name = name
	}
	if u.WinnerCount != nil {
		updated.WinnerCount = max(*u.WinnerCount, 1)
	}
	if u.BackupCount != nil {
		updated.BackupCount = max(*u.BackupCount, 0)
	}
	r.prizes[i] = updated
	return nil
}

// Remove drops the prize with the given id. An unknown id is a no-op.
func (r *Registry) Remove(id string) error {
	if r.frozen {
		return ErrFrozen
	}
	if i := r.indexOf(id); i >= 0 {
		r.prizes = slices.Delete(r.prizes, i, i+1)
	}
	return nil
}

// Get looks a prize up by id.
func (r *Registry) Get(id string) (models.Prize, bool) {
	i := r.indexOf(id)
	if i < 0 {
		return models.Prize{}, false
	}
	return r.prizes[i], true
}

// List returns the prizes in allocation order.
func (r *Registry) List() []models.Prize {
	return slices.Clone(r.prizes)
}

// Len returns the number of registered prizes.
func (r *Registry) Len() int {
	return len(r.prizes)
}

func (r *Registry) indexOf(id string) int {
	return slices.IndexFunc(r.prizes, func(p models.Prize) bool { return p.ID == id })
}

func (r *Registry) clear() {
	r.prizes = nil
}
