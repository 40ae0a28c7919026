package scraper

import (
	"fmt"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/glls/rankPrivateVPNServers/internal/shared/logger"
	"github.com/glls/rankPrivateVPNServers/serverpool/model"
)

// ServerListURL is the provider page the live source scrapes.
const ServerListURL = "https://privatevpn.com/serverlist"

// PrivateVPNSource implements Source against the live privatevpn.com page.
type PrivateVPNSource struct {
	collector *colly.Collector
}

// NewPrivateVPNSource creates a live source with the given request timeout.
func NewPrivateVPNSource(timeout time.Duration) *PrivateVPNSource {
	c := colly.NewCollector(
		colly.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/108.0.0.0 Safari/537.36"),
	)
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	c.SetRequestTimeout(timeout)

	return &PrivateVPNSource{
		collector: c,
	}
}

// Name returns the source name.
func (s *PrivateVPNSource) Name() string {
	return "privatevpn.com"
}

// Fetch retrieves the server list page and parses the server table out of it.
func (s *PrivateVPNSource) Fetch() (*model.ServerData, error) {
	l := logger.WithComponent("ServerPool/Scraper")
	l.Info().Str("source", s.Name()).Str("url", ServerListURL).Msg("Retrieving server list...")

	var data *model.ServerData
	var fetchErr error

	s.collector.OnHTML(tableSelector, func(e *colly.HTMLElement) {
		data = parseTable(e.DOM)
	})
	s.collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	if err := s.collector.Visit(ServerListURL); err != nil {
		return nil, fmt.Errorf("failed to retrieve server data: %w", err)
	}
	s.collector.Wait()

	if fetchErr != nil {
		return nil, fmt.Errorf("failed to retrieve server data: %w", fetchErr)
	}
	if data == nil {
		return nil, fmt.Errorf("server table %q not found at %s", tableSelector, ServerListURL)
	}

	l.Info().Int("count", len(data.Servers)).Str("source", s.Name()).Msg("Retrieval finished.")
	return data, nil
}
