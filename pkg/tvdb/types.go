// Package tvdb provides a cached client for the TVDB API v2.
package tvdb

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// SortOrder selects the episode numbering regime for an episode listing.
type SortOrder int

const (
	// OrderAired numbers episodes by broadcast season and episode number.
	OrderAired SortOrder = iota
	// OrderDVD prefers the DVD season and episode pair when both are known.
	OrderDVD
	// OrderAbsolute numbers episodes by absolute number, without seasons.
	OrderAbsolute
)

func (o SortOrder) String() string {
	switch o {
	case OrderDVD:
		return "dvd"
	case OrderAbsolute:
		return "absolute"
	default:
		return "aired"
	}
}

// ParseSortOrder parses a sort order name. The empty string means aired.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(s) {
	case "", "aired":
		return OrderAired, nil
	case "dvd":
		return OrderDVD, nil
	case "absolute":
		return OrderAbsolute, nil
	default:
		return OrderAired, fmt.Errorf("unknown sort order %q", s)
	}
}

// SearchResult identifies a series. Name may be empty for ID-only lookups.
type SearchResult struct {
	ID         int      `json:"id"`
	Name       string   `json:"name"`
	AliasNames []string `json:"aliasNames,omitempty"`
}

// SeriesInfo is the detail record for a series in one locale and sort order.
// It is immutable after construction; episodes carry their own copies.
type SeriesInfo struct {
	ID            int        `json:"id"`
	Locale        string     `json:"locale,omitempty"`
	Order         SortOrder  `json:"order"`
	Name          string     `json:"name"`
	AliasNames    []string   `json:"aliasNames,omitempty"`
	Certification string     `json:"certification,omitempty"`
	Network       string     `json:"network,omitempty"`
	Status        string     `json:"status,omitempty"`
	Rating        *float64   `json:"rating,omitempty"`
	RatingCount   *int       `json:"ratingCount,omitempty"`
	Runtime       *int       `json:"runtime,omitempty"`
	Genres        []string   `json:"genres,omitempty"`
	StartDate     *time.Time `json:"startDate,omitempty"`
}

// Clone returns an independent copy. Each episode holds its own copy so a
// change through one episode can never reach the shared series record.
func (s *SeriesInfo) Clone() SeriesInfo {
	clone := *s
	clone.AliasNames = slices.Clone(s.AliasNames)
	clone.Genres = slices.Clone(s.Genres)
	clone.Rating = clonePtr(s.Rating)
	clone.RatingCount = clonePtr(s.RatingCount)
	clone.Runtime = clonePtr(s.Runtime)
	clone.StartDate = clonePtr(s.StartDate)
	return clone
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Image is one artwork record for a series.
type Image struct {
	ID         int      `json:"id"`
	KeyType    string   `json:"keyType"`
	SubKey     string   `json:"subKey,omitempty"`
	FileName   string   `json:"fileName"`
	Resolution string   `json:"resolution,omitempty"`
	Rating     *float64 `json:"rating,omitempty"`
}
