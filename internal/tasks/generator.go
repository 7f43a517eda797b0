package tasks

import (
	"hash/fnv"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/goodtune/focusd/internal/storage"
)

const (
	tasksPerGoal = 3
	maxGenerated = 10
)

// Generate builds a starter task list from the user's onboarding goals:
// up to three suggestions per goal area, capped at ten tasks overall.
// Unknown goal areas are skipped. When rng is non-nil the combined list
// is shuffled before the cap is applied, so tests can inject a seeded
// source for a deterministic order.
func Generate(goals []string, now time.Time, rng *rand.Rand) []storage.Task {
	var generated []storage.Task

	for _, goal := range goals {
		templates, ok := taskTemplates[goal]
		if !ok {
			continue
		}

		count := tasksPerGoal
		if count > len(templates) {
			count = len(templates)
		}

		for _, tmpl := range templates[:count] {
			generated = append(generated, storage.Task{
				ID:          uuid.NewString(),
				Title:       tmpl.Title,
				Description: tmpl.Description,
				Priority:    tmpl.Priority,
				CreatedAt:   now,
			})
		}
	}

	if rng != nil {
		rng.Shuffle(len(generated), func(i, j int) {
			generated[i], generated[j] = generated[j], generated[i]
		})
	}

	if len(generated) > maxGenerated {
		generated = generated[:maxGenerated]
	}
	return generated
}

// SortByPriority orders tasks High to Low, ties broken by creation time.
func SortByPriority(list []storage.Task) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Priority.Rank() != list[j].Priority.Rank() {
			return list[i].Priority.Rank() < list[j].Priority.Rank()
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
}

// TopPending returns the highest-priority incomplete task, if any.
func TopPending(list []storage.Task) (storage.Task, bool) {
	pending := make([]storage.Task, 0, len(list))
	for _, task := range list {
		if !task.Completed {
			pending = append(pending, task)
		}
	}
	if len(pending) == 0 {
		return storage.Task{}, false
	}

	SortByPriority(pending)
	return pending[0], true
}

// MotivationalQuote picks the day's quote; the same day key always maps
// to the same quote.
func MotivationalQuote(day string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(day))
	return motivationalQuotes[int(h.Sum32())%len(motivationalQuotes)]
}
