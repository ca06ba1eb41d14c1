package lookup

import (
	"context"
	"log/slog"

	"github.com/kvgharbigit/polybook-sub003/internal/database"
)

const (
	// suggestScanLimit bounds how many stored lemmas one miss may
	// examine.
	suggestScanLimit = 256
	maxSuggestions   = 5
)

// suggest returns up to maxSuggestions lemmas within edit distance
// one of word, scanning a bounded, frequency-ordered slice of the
// store. It is best effort: any failure yields no suggestions, never
// an error.
func suggest(ctx context.Context, storePath, word string) []string {
	db, err := database.Open(storePath, true)
	if err != nil {
		slog.Debug("suggestion scan skipped", slog.Any("error", err))
		return nil
	}
	defer func() {
		_ = db.Close()
	}()

	runes := []rune(word)
	var candidates []string
	err = db.SelectContext(ctx, &candidates,
		`SELECT lemma FROM entries
		 WHERE length(lemma) BETWEEN ? AND ?
		 ORDER BY frequency DESC
		 LIMIT ?`,
		len(runes)-1, len(runes)+1, suggestScanLimit)
	if err != nil {
		slog.Debug("suggestion scan skipped", slog.Any("error", err))
		return nil
	}

	var out []string
	for _, candidate := range candidates {
		if candidate == word {
			continue
		}
		if withinEditDistanceOne(word, candidate) {
			out = append(out, candidate)
			if len(out) == maxSuggestions {
				break
			}
		}
	}
	return out
}

// withinEditDistanceOne reports whether a and b differ by at most one
// substitution, insertion or deletion.
func withinEditDistanceOne(a, b string) bool {
	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	switch len(rb) - len(ra) {
	case 0:
		diffs := 0
		for i := range ra {
			if ra[i] != rb[i] {
				diffs++
				if diffs > 1 {
					return false
				}
			}
		}
		return true
	case 1:
		// One insertion into the shorter string.
		i, j, skipped := 0, 0, false
		for i < len(ra) && j < len(rb) {
			if ra[i] == rb[j] {
				i++
				j++
				continue
			}
			if skipped {
				return false
			}
			skipped = true
			j++
		}
		return true
	default:
		return false
	}
}
