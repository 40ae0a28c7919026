// Package session ties the server pool together: one Session owns one
// retrieved server list and runs the filter, rate and sort pipeline against
// it. State that the original tool kept process-wide lives here, per session.
package session

import (
	"errors"
	"fmt"
	"iter"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/glls/rankPrivateVPNServers/internal/shared/logger"
	"github.com/glls/rankPrivateVPNServers/serverpool/filter"
	"github.com/glls/rankPrivateVPNServers/serverpool/model"
	"github.com/glls/rankPrivateVPNServers/serverpool/rater"
	"github.com/glls/rankPrivateVPNServers/serverpool/scraper"
	"github.com/glls/rankPrivateVPNServers/serverpool/storage"
)

// ErrNoServers is reported when a selection leaves nothing to rank.
var ErrNoServers = errors.New("no servers found")

// Recognized sort keys and their descriptions, for CLI help output.
var SortTypes = map[string]string{
	SortByRate:        "server latency (triggers probing)",
	SortByCountry:     "server's location",
	SortByCountryCode: "server's country code",
}

const (
	SortByRate        = "rate"
	SortByCountry     = "country"
	SortByCountryCode = "country_code"
)

// Options configures a Session. Source is required; everything else has
// working defaults.
type Options struct {
	Source scraper.Source
	Cache  storage.Cache // nil disables the cache file
	Prober rater.Prober

	Threads         int
	CacheTimeout    time.Duration
	RefreshInterval time.Duration
}

// Session owns one retrieved server list.
type Session struct {
	id      string
	source  scraper.Source
	cache   storage.Cache
	rater   *rater.Rater
	threads int

	cacheTimeout    time.Duration
	refreshInterval time.Duration

	data        *model.ServerData
	retrievedAt time.Time
}

// New creates a session. No retrieval happens until Servers is called.
func New(opts Options) *Session {
	if opts.Threads <= 0 {
		opts.Threads = 5
	}
	prober := opts.Prober
	if prober == nil {
		prober = rater.NewTCPProber(0, 0, 0, "")
	}
	return &Session{
		id:              uuid.NewString(),
		source:          opts.Source,
		cache:           opts.Cache,
		rater:           rater.New(prober),
		threads:         opts.Threads,
		cacheTimeout:    opts.CacheTimeout,
		refreshInterval: opts.RefreshInterval,
	}
}

// ID identifies this retrieval session in logs.
func (s *Session) ID() string {
	return s.id
}

// Data returns the current snapshot, nil before the first retrieval.
func (s *Session) Data() *model.ServerData {
	return s.data
}

// RetrievedAt returns when the current snapshot was obtained.
func (s *Session) RetrievedAt() time.Time {
	return s.retrievedAt
}

// Retrieve loads the server list, serving from the cache file while it is
// fresh and falling back to the live source otherwise.
func (s *Session) Retrieve() error {
	l := logger.WithComponent("ServerPool/Session")

	if s.cache != nil && s.cacheTimeout > 0 {
		data, mtime, err := s.cache.Load(s.cacheTimeout)
		if err != nil {
			l.Warn().Err(err).Msg("Failed to read cache file, retrieving live data.")
		}
		if data != nil {
			s.data = data
			s.retrievedAt = mtime
			return nil
		}
	}

	data, err := s.source.Fetch()
	if err != nil {
		return fmt.Errorf("server data unavailable: %w", err)
	}
	s.data = data
	s.retrievedAt = time.Now()

	if s.cache != nil && s.cacheTimeout > 0 {
		if err := s.cache.Save(data); err != nil {
			l.Warn().Err(err).Msg("Failed to write cache file.")
		}
	}

	l.Info().
		Str("session_id", s.id).
		Str("source", s.source.Name()).
		Int("count", len(data.Servers)).
		Msg("Server list ready.")
	return nil
}

// Servers returns the endpoint records, retrieving them first if the session
// has none yet or the snapshot has outlived the refresh interval.
func (s *Session) Servers() ([]*model.Endpoint, error) {
	if s.data == nil || time.Since(s.retrievedAt) > s.refreshInterval {
		if err := s.Retrieve(); err != nil {
			return nil, err
		}
	}
	return s.data.Servers, nil
}

// Filter returns a lazy sequence of the endpoints matching the criteria.
// Consuming it exhausts it; reapply to the original data for another pass.
func (s *Session) Filter(endpoints []*model.Endpoint, opts filter.Options) (iter.Seq[*model.Endpoint], error) {
	f, err := filter.New(opts)
	if err != nil {
		return nil, err
	}
	return f.Apply(filter.All(endpoints)), nil
}

// Rate probes every endpoint with the session's worker count and returns
// them reordered by latency.
func (s *Session) Rate(endpoints []*model.Endpoint) []*model.Endpoint {
	return s.rater.Rate(endpoints, s.threads)
}

// Sort orders the endpoints by the given key. Sorting by rate delegates to
// the rater and is the one path that probes the network. An unknown or empty
// key leaves the input order untouched.
func (s *Session) Sort(endpoints []*model.Endpoint, by string) []*model.Endpoint {
	switch by {
	case SortByRate:
		return s.Rate(endpoints)
	case SortByCountry:
		out := append([]*model.Endpoint(nil), endpoints...)
		sort.SliceStable(out, func(i, j int) bool { return out[i].Country < out[j].Country })
		return out
	case SortByCountryCode:
		out := append([]*model.Endpoint(nil), endpoints...)
		sort.SliceStable(out, func(i, j int) bool { return out[i].CountryCode < out[j].CountryCode })
		return out
	default:
		return endpoints
	}
}

// SelectOptions are the pipeline settings for one selection run.
type SelectOptions struct {
	Filter  filter.Options
	Fastest int    // keep only the n fastest (rates first)
	SortBy  string // one of the SortTypes keys
	Number  int    // cap the final list at n servers
	Random  bool   // shuffle the final list
}

// Select runs the full pipeline in its fixed policy order:
// filter, then fastest-truncation (which rate-sorts), then the requested
// sort unless the list is already rate-sorted for fastest, then the number
// cap, then the shuffle.
func (s *Session) Select(opts SelectOptions) ([]*model.Endpoint, error) {
	servers, err := s.Servers()
	if err != nil {
		return nil, err
	}

	seq, err := s.Filter(servers, opts.Filter)
	if err != nil {
		return nil, err
	}
	endpoints := filter.Collect(seq)

	if opts.Fastest > 0 {
		endpoints = s.Sort(endpoints, SortByRate)
		if len(endpoints) > opts.Fastest {
			endpoints = endpoints[:opts.Fastest]
		}
	}

	if opts.SortBy != "" && !(opts.SortBy == SortByRate && opts.Fastest > 0) {
		endpoints = s.Sort(endpoints, opts.SortBy)
	}

	if opts.Number > 0 && len(endpoints) > opts.Number {
		endpoints = endpoints[:opts.Number]
	}

	if opts.Random {
		rand.Shuffle(len(endpoints), func(i, j int) {
			endpoints[i], endpoints[j] = endpoints[j], endpoints[i]
		})
	}

	return endpoints, nil
}

// CountryKey identifies a country in the distribution listing.
type CountryKey struct {
	Country string
	Code    string
}

// ListCountries returns how many servers each country has.
func (s *Session) ListCountries() (map[CountryKey]int, error) {
	servers, err := s.Servers()
	if err != nil {
		return nil, err
	}
	counts := make(map[CountryKey]int)
	for _, e := range servers {
		counts[CountryKey{Country: e.Country, Code: e.CountryCode}]++
	}
	return counts, nil
}
