package query

import (
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/proverbbot/internal/dataset"
)

func pool() []dataset.Record {
	return []dataset.Record{
		{ID: 1, Proverb: "Ogbon ju agbara lo", Translation: "Wisdom is greater than strength", Wisdom: "think first"},
		{ID: 4, Proverb: "Iwa l'ewa", Translation: "Character is beauty", Wisdom: "wisdom of conduct"},
		{ID: 9, Proverb: "Suuru", Translation: "Patience brings WISDOM", Wisdom: "wait"},
		{ID: 12, Proverb: "wisdom in the proverb", Translation: "One hand cannot lift a load", Wisdom: "together"},
	}
}

func seeded() IntN {
	r := rand.New(rand.NewPCG(1, 2))
	return r.IntN
}

func TestFormat(t *testing.T) {
	got := Format(dataset.Record{ID: 42, Proverb: "P", Translation: "T", Wisdom: "W"})
	assert.Equal(t, "42\n\nProverb: P\nTranslation: T\nWisdom: W", got)
}

func TestFormatLabelsInOrder(t *testing.T) {
	for _, r := range pool() {
		lines := strings.Split(Format(r), "\n")
		require.Len(t, lines, 5)
		assert.Equal(t, "", lines[1])
		assert.True(t, strings.HasPrefix(lines[2], "Proverb: "))
		assert.True(t, strings.HasPrefix(lines[3], "Translation: "))
		assert.True(t, strings.HasPrefix(lines[4], "Wisdom: "))
	}
}

func TestFormatAll(t *testing.T) {
	records := pool()[:2]
	got := FormatAll(records)
	assert.Equal(t, Format(records[0])+"\n\n"+Format(records[1]), got)
	assert.Equal(t, "", FormatAll(nil))
}

func TestRandomSample(t *testing.T) {
	p := pool()
	for n := MinCount; n <= MaxCount; n++ {
		got, err := RandomSample(p, n, seeded())
		require.NoError(t, err)
		require.Len(t, got, n)
		for _, r := range got {
			assert.Contains(t, p, r)
		}
	}
}

func TestRandomSampleWithReplacement(t *testing.T) {
	single := pool()[:1]
	got, err := RandomSample(single, 3, seeded())
	require.NoError(t, err)
	assert.Equal(t, []dataset.Record{single[0], single[0], single[0]}, got)
}

func TestRandomSampleUsesSource(t *testing.T) {
	idx := []int{3, 0, 3}
	i := 0
	fixed := func(n int) int {
		v := idx[i] % n
		i++
		return v
	}
	got, err := RandomSample(pool(), 3, fixed)
	require.NoError(t, err)
	assert.Equal(t, []int64{12, 1, 12}, []int64{got[0].ID, got[1].ID, got[2].ID})
}

func TestRandomSampleEdgeCases(t *testing.T) {
	got, err := RandomSample(pool(), 0, seeded())
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = RandomSample(pool(), -2, seeded())
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = RandomSample(nil, 1, seeded())
	assert.True(t, errors.Is(err, ErrEmptyPool))

	got, err = RandomSample(pool(), 2, nil)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSearch(t *testing.T) {
	p := pool()
	got := Search(p, "wisdom")
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(9), got[1].ID)

	// proverb and wisdom fields are not searched
	for _, r := range got {
		assert.Contains(t, strings.ToLower(r.Translation), "wisdom")
	}

	assert.Empty(t, Search(p, "nothing like this"))
	assert.Len(t, Search(p, "CHARACTER is"), 1)
}

func TestSearchNeverIncludesNonMatching(t *testing.T) {
	p := pool()
	for _, q := range []string{"is", "wisdom", "hand", "x"} {
		got := Search(p, q)
		for _, r := range got {
			assert.Contains(t, strings.ToLower(r.Translation), strings.ToLower(q))
		}
		assert.Equal(t, got, Search(got, q))
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		token    string
		want     int
		wantKind CountErrorKind
	}{
		{token: "1", want: 1},
		{token: "5", want: 5},
		{token: "3", want: 3},
		{token: "6", wantKind: LimitExceeded},
		{token: "100", wantKind: LimitExceeded},
		{token: "0", wantKind: BelowMinimum},
		{token: "-1", wantKind: BelowMinimum},
		{token: "abc", wantKind: FormatError},
		{token: "3abc", wantKind: FormatError},
		{token: "2.5", wantKind: FormatError},
		{token: "", wantKind: FormatError},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := ParseCount(tt.token)
			if tt.wantKind == 0 {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
				return
			}
			var ce *CountError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.wantKind, ce.Kind)
			assert.Equal(t, tt.token, ce.Token)
		})
	}
}

func TestSplitCount(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantRest  []string
		wantToken string
		wantOK    bool
	}{
		{name: "query and count", args: []string{"old", "man", "3"}, wantRest: []string{"old", "man"}, wantToken: "3", wantOK: true},
		{name: "query only", args: []string{"old", "man"}, wantRest: []string{"old", "man"}},
		{name: "bare number is a query", args: []string{"3"}, wantRest: []string{"3"}},
		{name: "negative count token", args: []string{"q", "-1"}, wantRest: []string{"q"}, wantToken: "-1", wantOK: true},
		{name: "empty", args: nil, wantRest: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rest, token, ok := SplitCount(tt.args)
			assert.Equal(t, tt.wantRest, rest)
			assert.Equal(t, tt.wantToken, token)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}
