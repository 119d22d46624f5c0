package tvdb

import (
	"context"
	"fmt"
	"net/url"
)

// GetImages fetches image metadata of the given key type for a series.
// Image queries are not localized. A missing or malformed rating yields a
// nil rating, not an error.
func (c *Client) GetImages(ctx context.Context, series SearchResult, keyType string) ([]Image, error) {
	path := fmt.Sprintf("series/%d/images/query?keyType=%s", series.ID, url.QueryEscape(keyType))
	doc, err := c.requestJSON(ctx, path, "", ttlWeek)
	if err != nil {
		return nil, err
	}

	var images []Image
	for _, it := range doc.objects("data") {
		id := it.integer("id")
		if id == nil {
			continue
		}

		images = append(images, Image{
			ID:         *id,
			KeyType:    keyType,
			SubKey:     it.str("subKey"),
			FileName:   it.str("fileName"),
			Resolution: it.str("resolution"),
			Rating:     it.object("ratingsInfo").decimal("average"),
		})
	}
	return images, nil
}
