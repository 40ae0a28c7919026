package scraper

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/glls/rankPrivateVPNServers/serverpool/geo"
	"github.com/glls/rankPrivateVPNServers/serverpool/model"
)

const (
	// tableSelector matches the server table on the provider's page.
	tableSelector = "table.table-deluxe"

	dataTitle   = "PrivateVPN Server list"
	dataVersion = 1

	// A data row has exactly these six cells:
	// country-city, address, OpenVPN-TAP port, OpenVPN-TUN port,
	// SOCKS5 proxy port, HTTP proxy port.
	rowCells = 6
)

// ParseReader parses a full server list HTML document.
func ParseReader(r io.Reader) (*model.ServerData, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse server list document: %w", err)
	}
	table := doc.Find(tableSelector).First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("server table %q not found in document", tableSelector)
	}
	return parseTable(table), nil
}

// parseTable extracts the server list from the table selection. Rows that do
// not carry the expected six cells (header rows, spacers) are skipped.
func parseTable(table *goquery.Selection) *model.ServerData {
	var headers []string
	table.Find("thead th").Each(func(_ int, th *goquery.Selection) {
		headers = append(headers, cleanCell(th.Text()))
	})

	var servers []*model.Endpoint
	rows := table.Find("tr")
	rows.Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() != rowCells {
			return
		}

		country, city := splitLocation(cells.Eq(0).Text())
		servers = append(servers, &model.Endpoint{
			Country:     country,
			CountryCode: geo.Code(country),
			City:        city,
			URL:         cleanCell(cells.Eq(1).Text()),
			PortTap:     cleanCell(cells.Eq(2).Text()),
			PortTun:     cleanCell(cells.Eq(3).Text()),
			ProxySocks:  cleanCell(cells.Eq(4).Text()),
			ProxyHTTP:   cleanCell(cells.Eq(5).Text()),
		})
	})

	return &model.ServerData{
		Title:     dataTitle,
		Version:   dataVersion,
		Headers:   headers,
		LastCheck: time.Now().UTC(),
		Total:     rows.Length(),
		Servers:   servers,
	}
}

// splitLocation splits a "Country - City" compound cell. The city part may be
// missing.
func splitLocation(text string) (country, city string) {
	parts := strings.Split(strings.ReplaceAll(text, "\n", ""), "-")
	country = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		city = strings.TrimSpace(parts[1])
	}
	return country, city
}

func cleanCell(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, "\n", ""))
}
