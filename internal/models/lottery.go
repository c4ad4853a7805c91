package models

import "fmt"

// Prize represents a single prize category in the draw.
// WinnerCount main winners and BackupCount alternates are drawn for it,
// in the order prizes were registered.
type Prize struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	WinnerCount int    `json:"winnerCount"`
	BackupCount int    `json:"backupCount"`
}

// Participant represents a person entering the draw.
// Names are not unique; two participants with the same name are still distinct entries.
type Participant struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Winner links a drawn participant to a prize.
type Winner struct {
	Participant Participant `json:"participant"`
	Prize       Prize       `json:"prize"`
	IsBackup    bool        `json:"isBackup"`
	// PoolIndex is the participant's position in the pool snapshot the draw ran on.
	PoolIndex int `json:"poolIndex"`
}

// Status is the label used for a winner in exports and views.
func (w Winner) Status() string {
	if w.IsBackup {
		return StatusBackup
	}
	return StatusMainWinner
}

const (
	StatusMainWinner = "Main Winner"
	StatusBackup     = "Backup"
)

// Phase is the coarse lifecycle position of a draw.
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseArmed        Phase = "armed"
	PhaseCountingDown Phase = "counting_down"
	PhaseCompleted    Phase = "completed"
)

// DrawState is the scheduler state. Remaining is only meaningful while armed or counting down.
type DrawState struct {
	Phase     Phase `json:"phase"`
	Remaining int   `json:"remaining"`
}

func (s DrawState) String() string {
	switch s.Phase {
	case PhaseArmed, PhaseCountingDown:
		return fmt.Sprintf("%s(%d)", s.Phase, s.Remaining)
	default:
		return string(s.Phase)
	}
}

// PrizeFill reports how many of a prize's slots a draw actually filled.
type PrizeFill struct {
	PrizeID          string `json:"prizeId"`
	RequestedWinners int    `json:"requestedWinners"`
	RequestedBackups int    `json:"requestedBackups"`
	Winners          int    `json:"winners"`
	Backups          int    `json:"backups"`
}

// Unfilled is the number of requested slots the pool could not cover.
func (f PrizeFill) Unfilled() int {
	return f.RequestedWinners + f.RequestedBackups - f.Winners - f.Backups
}
