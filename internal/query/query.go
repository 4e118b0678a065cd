// Package query selects and renders proverbs for the /random, /search and
// /id commands.
package query

import (
	"errors"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/m3rciful/proverbbot/internal/dataset"
)

const (
	// MinCount is the smallest count a user may request.
	MinCount = 1
	// MaxCount is the largest count a user may request.
	MaxCount = 5
	// DefaultCount is used when no count argument is given.
	DefaultCount = 1
)

// ErrEmptyPool is returned when sampling is attempted on an empty pool.
var ErrEmptyPool = errors.New("query: cannot sample from an empty pool")

// IntN returns a uniform integer in [0, n). It must be safe for concurrent use.
type IntN func(n int) int

// DefaultIntN is the package-level source backed by math/rand/v2.
var DefaultIntN IntN = rand.IntN

// Format renders a record as the canonical four-line block.
func Format(r dataset.Record) string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(r.ID, 10))
	b.WriteString("\n\nProverb: ")
	b.WriteString(r.Proverb)
	b.WriteString("\nTranslation: ")
	b.WriteString(r.Translation)
	b.WriteString("\nWisdom: ")
	b.WriteString(r.Wisdom)
	return b.String()
}

// FormatAll renders records separated by a blank line.
func FormatAll(records []dataset.Record) string {
	blocks := make([]string, len(records))
	for i, r := range records {
		blocks[i] = Format(r)
	}
	return strings.Join(blocks, "\n\n")
}

// RandomSample draws count records from pool uniformly and with replacement,
// so the same record may appear more than once. A count below one yields an
// empty result.
func RandomSample(pool []dataset.Record, count int, intn IntN) ([]dataset.Record, error) {
	if count <= 0 {
		return []dataset.Record{}, nil
	}
	if len(pool) == 0 {
		return nil, ErrEmptyPool
	}
	if intn == nil {
		intn = DefaultIntN
	}
	out := make([]dataset.Record, count)
	for i := range out {
		out[i] = pool[intn(len(pool))]
	}
	return out, nil
}

// Search returns the records whose translation contains q, ignoring case.
// Proverb and wisdom text are not searched. Order follows pool.
func Search(pool []dataset.Record, q string) []dataset.Record {
	needle := strings.ToLower(q)
	var out []dataset.Record
	for _, r := range pool {
		if strings.Contains(strings.ToLower(r.Translation), needle) {
			out = append(out, r)
		}
	}
	return out
}
