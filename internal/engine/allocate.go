package engine

import (
	"slices"

	"prizedraw/internal/models"
)

// RandomSource picks indices for the allocation. *math/rand.Rand satisfies it,
// so a seeded source gives a reproducible draw.
type RandomSource interface {
	// Intn returns a uniformly random int in [0, n).
	Intn(n int) int
}

// Allocate draws winners and then backups for each prize in order, without replacement.
//
// Every participant is drawn at most once across all prizes. When the pool runs dry,
// the current prize keeps what it has and the remaining prizes get nothing; that is
// reported through the returned slice being shorter, not through an error.
// The same pool, prizes and random sequence always yield the same result.
func Allocate(pool []models.Participant, prizes []models.Prize, rng RandomSource) []models.Winner {
	// remaining holds pool positions, so duplicate names stay distinct entries.
	remaining := make([]int, len(pool))
	for i := range remaining {
		remaining[i] = i
	}

	var winners []models.Winner
	draw := func(prize models.Prize, count int, backup bool) {
		for n := 0; n < count && len(remaining) > 0; n++ {
			i := rng.Intn(len(remaining))
			idx := remaining[i]
			remaining = slices.Delete(remaining, i, i+1)
			winners = append(winners, models.Winner{
				Participant: pool[idx],
				Prize:       prize,
				IsBackup:    backup,
				PoolIndex:   idx,
			})
		}
	}

	for _, prize := range prizes {
		draw(prize, prize.WinnerCount, false)
		draw(prize, prize.BackupCount, true)
	}
	return winners
}

// Fills summarizes, per prize and in prize order, how many slots winners covered.
func Fills(prizes []models.Prize, winners []models.Winner) []models.PrizeFill {
	fills := make([]models.PrizeFill, len(prizes))
	pos := make(map[string]int, len(prizes))
	for i, p := range prizes {
		fills[i] = models.PrizeFill{
			PrizeID:          p.ID,
			RequestedWinners: p.WinnerCount,
			RequestedBackups: p.BackupCount,
		}
		pos[p.ID] = i
	}
	for _, w := range winners {
		i, ok := pos[w.Prize.ID]
		if !ok {
			continue
		}
		if w.IsBackup {
			fills[i].Backups++
		} else {
			fills[i].Winners++
		}
	}
	return fills
}
