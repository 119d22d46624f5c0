package tvdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(n int) *int {
	return &n
}

func TestCompareNumber(t *testing.T) {
	assert.Zero(t, compareNumber(nil, nil))
	assert.Positive(t, compareNumber(nil, intPtr(1)), "nil sorts last")
	assert.Negative(t, compareNumber(intPtr(1), nil))
	assert.Negative(t, compareNumber(intPtr(1), intPtr(2)))
	assert.Positive(t, compareNumber(intPtr(2), intPtr(1)))
	assert.Zero(t, compareNumber(intPtr(3), intPtr(3)))
}

func TestSortEpisodes(t *testing.T) {
	episodes := []Episode{
		{Season: intPtr(2), Number: intPtr(1), Title: "s2e1"},
		{Season: intPtr(1), Number: nil, Title: "s1-unknown"},
		{Season: nil, Number: intPtr(3), Title: "abs3"},
		{Season: intPtr(1), Number: intPtr(2), Title: "s1e2"},
		{Season: intPtr(1), Number: intPtr(1), Title: "s1e1"},
		{Season: nil, Number: intPtr(1), Title: "abs1"},
	}

	sortEpisodes(episodes)

	titles := make([]string, len(episodes))
	for i, ep := range episodes {
		titles[i] = ep.Title
	}
	assert.Equal(t, []string{"s1e1", "s1e2", "s1-unknown", "s2e1", "abs1", "abs3"}, titles)
}

func TestSortEpisodes_Stable(t *testing.T) {
	episodes := []Episode{
		{Season: intPtr(1), Number: intPtr(1), Title: "first"},
		{Season: intPtr(1), Number: intPtr(1), Title: "second"},
		{Season: intPtr(1), Number: intPtr(1), Title: "third"},
	}

	sortEpisodes(episodes)

	assert.Equal(t, "first", episodes[0].Title)
	assert.Equal(t, "second", episodes[1].Title)
	assert.Equal(t, "third", episodes[2].Title)
}

func TestEpisode_Special(t *testing.T) {
	assert.True(t, Episode{SpecialNumber: intPtr(1)}.Special())
	assert.False(t, Episode{Season: intPtr(1), Number: intPtr(1)}.Special())
	assert.False(t, Episode{Number: intPtr(7)}.Special(), "absolute-order episodes are not specials")
}
