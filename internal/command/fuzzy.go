package command

import (
	"strings"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"

	"cyberorganism/internal/model"
)

// Slab sizes match fzf's own defaults.
const (
	slab16Size = 100 * 1024
	slab32Size = 2048
)

// fuzzyScore scores pattern against text, lowercasing both sides. Zero
// means no match. A nil slab is fine; passing one avoids per-call
// allocation.
func fuzzyScore(text string, pattern []rune, slab *util.Slab) int {
	if len(pattern) == 0 {
		return 0
	}
	lowered := []rune(strings.ToLower(string(pattern)))
	chars := util.ToChars([]byte(strings.ToLower(text)))
	result, _ := algo.FuzzyMatchV2(false, true, true, &chars, lowered, false, slab)
	if result.Score <= 0 {
		return 0
	}
	return result.Score
}

// FindByContent resolves free text to a task id by fuzzy-matching whole
// task content. The query must cover nearly the entire content: lengths
// differing by more than three runes never match. Tasks in the active
// container are preferred over everything else; within a group the best
// score wins, earliest task breaking ties.
func FindByContent(tasks []model.Task, active model.Container, query string) (int, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return 0, false
	}
	pattern := []rune(query)
	slab := util.MakeSlab(slab16Size, slab32Size)

	match := func(inActive bool) (int, bool) {
		bestID, bestScore := 0, 0
		for i := range tasks {
			t := &tasks[i]
			if (t.Container == active) != inActive {
				continue
			}
			if diff := len([]rune(t.Content)) - len(pattern); diff > 3 || diff < -3 {
				continue
			}
			if score := fuzzyScore(t.Content, pattern, slab); score > bestScore {
				bestID, bestScore = t.ID, score
			}
		}
		return bestID, bestScore > 0
	}

	if id, ok := match(true); ok {
		return id, true
	}
	return match(false)
}
