package tvdb

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hbollon/go-edlib"
)

// search executes a series search and maps the result records. Records
// whose name is wrapped in "**" markers are placeholders on the TVDB side
// and are dropped.
func (c *Client) search(ctx context.Context, path string, query url.Values, locale string, ttl time.Duration) ([]SearchResult, error) {
	doc, err := c.requestJSON(ctx, path+"?"+query.Encode(), locale, ttl)
	if err != nil {
		return nil, err
	}

	var results []SearchResult
	for _, it := range doc.objects("data") {
		id := it.integer("id")
		if id == nil {
			continue
		}

		name := it.str("seriesName")
		if strings.HasPrefix(name, "**") && strings.HasSuffix(name, "**") {
			if c.log != nil {
				c.log.Debug("invalid series", "name", name, "id", *id)
			}
			continue
		}

		results = append(results, SearchResult{
			ID:         *id,
			Name:       name,
			AliasNames: it.strings("aliases"),
		})
	}
	return results, nil
}

// SearchByName searches series by name.
func (c *Client) SearchByName(ctx context.Context, name, locale string) ([]SearchResult, error) {
	return c.search(ctx, "search/series", url.Values{"name": {name}}, locale, ttlDay)
}

// SearchByIMDbID resolves a numeric IMDb ID to a single series. Returns
// ErrNotFound when the ID matches nothing.
func (c *Client) SearchByIMDbID(ctx context.Context, imdbID int, locale string) (*SearchResult, error) {
	if imdbID <= 0 {
		return nil, fmt.Errorf("%w: imdb id %d", ErrInvalidID, imdbID)
	}

	results, err := c.search(ctx, "search/series", url.Values{"imdbId": {strconv.Itoa(imdbID)}}, locale, ttlMonth)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}
	return &results[0], nil
}

// LookupByID resolves a TVDB series ID directly, bypassing search and its
// placeholder filter.
func (c *Client) LookupByID(ctx context.Context, id int, locale string) (*SearchResult, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: series id %d", ErrInvalidID, id)
	}

	info, err := c.GetSeriesInfo(ctx, SearchResult{ID: id}, locale)
	if err != nil {
		return nil, err
	}
	return &SearchResult{ID: id, Name: info.Name, AliasNames: info.AliasNames}, nil
}

// RankByRelevance orders results by Jaro-Winkler similarity between the
// query and each result's name or best-matching alias. The sort is stable,
// so the API's own ordering breaks ties.
func RankByRelevance(query string, results []SearchResult) {
	type scored struct {
		result SearchResult
		score  float64
	}

	ranked := make([]scored, len(results))
	for i, r := range results {
		ranked[i] = scored{result: r, score: relevance(query, r)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	for i, s := range ranked {
		results[i] = s.result
	}
}

// relevance scores a result against the query across its name and aliases.
func relevance(query string, result SearchResult) float64 {
	best := similarity(query, result.Name)
	for _, alias := range result.AliasNames {
		if s := similarity(query, alias); s > best {
			best = s
		}
	}
	return best
}

func similarity(a, b string) float64 {
	return float64(edlib.JaroWinklerSimilarity(strings.ToLower(a), strings.ToLower(b)))
}
