package yahoo

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FetchSector scrapes the provider's sector name from the profile page.
// An empty string means the page carries no sector.
func (c *Client) FetchSector(ctx context.Context, ticker string) (string, error) {
	fullURL := fmt.Sprintf("%s/%s/profile", c.profileURL, url.PathEscape(ticker))

	body, err := c.httpClient.GetBody(ctx, fullURL)
	if err != nil {
		return "", fmt.Errorf("fetch profile for %s: %w", ticker, err)
	}

	sector, err := parseSector(body)
	if err != nil {
		return "", fmt.Errorf("parse profile for %s: %w", ticker, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"sector": sector,
	}).Debug("Fetched sector")

	return sector, nil
}

// parseSector handles both the <dt>/<dd> layout and the older labelled-span layout
func parseSector(body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	var sector string
	doc.Find("dt").EachWithBreak(func(i int, dt *goquery.Selection) bool {
		if !isSectorLabel(dt.Text()) {
			return true
		}
		sector = strings.TrimSpace(dt.NextFiltered("dd").Text())
		return sector == ""
	})
	if sector != "" {
		return sector, nil
	}

	doc.Find("span").EachWithBreak(func(i int, label *goquery.Selection) bool {
		if !isSectorLabel(label.Text()) {
			return true
		}
		sector = strings.TrimSpace(label.NextAllFiltered("span").First().Text())
		return sector == ""
	})

	return sector, nil
}

func isSectorLabel(s string) bool {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), ":"))
	return s == "Sector" || s == "Sector(s)"
}
