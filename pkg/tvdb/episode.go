package tvdb

import (
	"sort"
	"time"
)

// Episode is a single episode in the numbering regime requested at fetch
// time. Regular episodes carry Season and Number; specials carry
// SpecialNumber instead, never both.
type Episode struct {
	SeriesName     string     `json:"seriesName"`
	Season         *int       `json:"season,omitempty"`
	Number         *int       `json:"episode,omitempty"`
	Title          string     `json:"title"`
	AbsoluteNumber *int       `json:"absoluteNumber,omitempty"`
	SpecialNumber  *int       `json:"specialNumber,omitempty"`
	AirDate        *time.Time `json:"airdate,omitempty"`
	Series         SeriesInfo `json:"-"`
}

// Special reports whether the episode is numbered outside normal seasons.
func (e Episode) Special() bool {
	return e.SpecialNumber != nil
}

// sortEpisodes orders episodes by season, then episode number. Unknown
// numbers sort after known ones. The sort is stable, so episodes that
// compare equal keep their page-encounter order.
func sortEpisodes(episodes []Episode) {
	sort.SliceStable(episodes, func(i, j int) bool {
		if cmp := compareNumber(episodes[i].Season, episodes[j].Season); cmp != 0 {
			return cmp < 0
		}
		return compareNumber(episodes[i].Number, episodes[j].Number) < 0
	})
}

// compareNumber orders two optional numbers, nil last.
func compareNumber(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	default:
		return 0
	}
}
