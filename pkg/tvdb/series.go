package tvdb

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

const airDateFormat = "2006-01-02"

// GetSeriesInfo fetches the detail record for a series and merges its
// aliases with those already known from the search result.
func (c *Client) GetSeriesInfo(ctx context.Context, series SearchResult, locale string) (*SeriesInfo, error) {
	doc, err := c.requestJSON(ctx, "series/"+strconv.Itoa(series.ID), locale, ttlWeek)
	if err != nil {
		return nil, err
	}
	data := doc.object("data")

	return &SeriesInfo{
		ID:            series.ID,
		Locale:        locale,
		Name:          data.str("seriesName"),
		AliasNames:    mergeAliases(series.AliasNames, data.strings("aliases")),
		Certification: data.str("rating"),
		Network:       data.str("network"),
		Status:        data.str("status"),
		Rating:        data.decimal("siteRating"),
		RatingCount:   data.integer("siteRatingCount"),
		Runtime:       matchInteger(data.str("runtime")),
		Genres:        data.strings("genre"),
		StartDate:     parseAirDate(data.str("firstAired")),
	}, nil
}

// SeriesData is a series with its complete episode list in the requested
// numbering order.
type SeriesData struct {
	Info     *SeriesInfo `json:"info"`
	Episodes []Episode   `json:"episodes"`
}

// FetchSeriesData fetches series metadata and the full episode listing,
// reconciling episode numbering against the requested sort order. Normal
// episodes come first in comparator order; specials trail in the order the
// pages delivered them.
func (c *Client) FetchSeriesData(ctx context.Context, series SearchResult, order SortOrder, locale string) (*SeriesData, error) {
	info, err := c.GetSeriesInfo(ctx, series, locale)
	if err != nil {
		return nil, err
	}
	info.Order = order

	var episodes, specials []Episode

	// links.last from the first page is authoritative for the page count.
	lastPage := 1
	for page := 1; page <= lastPage; page++ {
		doc, err := c.requestJSON(ctx, fmt.Sprintf("series/%d/episodes?page=%d", series.ID, page), locale, ttlDay)
		if err != nil {
			return nil, err
		}
		if page == 1 {
			if last := doc.object("links").integer("last"); last != nil {
				lastPage = *last
			}
		}

		for _, it := range doc.objects("data") {
			episode, special := buildEpisode(it, order, info)
			if special {
				specials = append(specials, episode)
			} else {
				episodes = append(episodes, episode)
			}
		}
	}

	// DVD numbering may not match page order.
	sortEpisodes(episodes)
	episodes = append(episodes, specials...)

	return &SeriesData{Info: info, Episodes: episodes}, nil
}

// buildEpisode maps one episode record, applying the numbering precedence:
// aired numbers by default, the DVD pair only when both values are known,
// the absolute number only when positive. A season at or below zero marks a
// special, whose episode number becomes the special number.
func buildEpisode(it document, order SortOrder, info *SeriesInfo) (Episode, bool) {
	title := it.str("episodeName")
	absolute := it.integer("absoluteNumber")
	airDate := parseAirDate(it.str("firstAired"))

	number := it.integer("airedEpisodeNumber")
	season := it.integer("airedSeason")

	switch order {
	case OrderDVD:
		dvdSeason := it.integer("dvdSeason")
		dvdNumber := it.integer("dvdEpisodeNumber")
		if dvdSeason != nil && dvdNumber != nil {
			season = dvdSeason
			number = dvdNumber
		}
	case OrderAbsolute:
		if absolute != nil && *absolute > 0 {
			number = absolute
			season = nil
		}
	}

	if season == nil || *season > 0 {
		return Episode{
			SeriesName:     info.Name,
			Season:         season,
			Number:         number,
			Title:          title,
			AbsoluteNumber: absolute,
			AirDate:        airDate,
			Series:         info.Clone(),
		}, false
	}

	return Episode{
		SeriesName:    info.Name,
		Title:         title,
		SpecialNumber: number,
		AirDate:       airDate,
		Series:        info.Clone(),
	}, true
}

// EpisodeListURL returns the public site page listing all episodes of a
// series.
func EpisodeListURL(series SearchResult) string {
	return "https://www.thetvdb.com/?tab=seasonall&id=" + strconv.Itoa(series.ID)
}

// parseAirDate parses a YYYY-MM-DD date, returning nil for empty or
// malformed values.
func parseAirDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(airDateFormat, s)
	if err != nil {
		return nil
	}
	return &t
}

// mergeAliases combines alias lists, deduplicated, first occurrence wins.
func mergeAliases(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var merged []string
	for _, list := range lists {
		for _, alias := range list {
			if _, ok := seen[alias]; ok {
				continue
			}
			seen[alias] = struct{}{}
			merged = append(merged, alias)
		}
	}
	return merged
}
