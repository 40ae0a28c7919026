package rater

import (
	"sort"
	"sync"

	"github.com/glls/rankPrivateVPNServers/internal/shared/logger"
	"github.com/glls/rankPrivateVPNServers/serverpool/model"
)

// result is one (url, latency) pair produced by a worker. Every submitted
// endpoint yields exactly one result, failed probes included.
type result struct {
	url  string
	rate float64
}

// Rater runs rating batches: it probes every endpoint of a set through a
// fixed-size worker pool and returns the set reordered by latency.
type Rater struct {
	prober Prober
}

// New creates a Rater measuring with the given prober.
func New(prober Prober) *Rater {
	return &Rater{prober: prober}
}

// Rate probes every endpoint with at most concurrency workers and returns a
// reordered list: reachable servers first, ascending by latency (stable for
// ties), then unreachable servers in their original relative order. The
// input endpoints get their rate attached in place.
//
// Workers live for one call only. A failed probe degrades to latency 0 and
// never aborts the batch.
func (r *Rater) Rate(endpoints []*model.Endpoint, concurrency int) []*model.Endpoint {
	l := logger.WithComponent("ServerPool/Rater")

	if len(endpoints) == 0 {
		l.Warn().Msg("No servers selected for rating.")
		return endpoints
	}

	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > len(endpoints) {
		concurrency = len(endpoints)
	}

	l.Info().Int("count", len(endpoints)).Int("workers", concurrency).Msg("Starting rating batch...")

	jobs := make(chan string)
	results := make(chan result, len(endpoints))

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for url := range jobs {
				results <- result{url: url, rate: r.prober.Probe(url)}
			}
		}()
	}

	for _, e := range endpoints {
		l.Info().Str("url", e.URL).Msg("rating server")
		jobs <- e.URL
	}
	close(jobs)

	// Drain barrier: every dispatched probe must have finished before the
	// results are read back.
	wg.Wait()
	close(results)

	rates := make(map[string]float64, len(endpoints))
	for res := range results {
		l.Info().Str("url", res.url).Float64("rate_ms", res.rate).Msg("rated server")
		rates[res.url] = res.rate
	}

	for _, e := range endpoints {
		e.SetRate(rates[e.URL])
	}

	rated := make([]*model.Endpoint, 0, len(endpoints))
	unreachable := make([]*model.Endpoint, 0)
	for _, e := range endpoints {
		if e.Reachable() {
			rated = append(rated, e)
		} else {
			unreachable = append(unreachable, e)
		}
	}
	sort.SliceStable(rated, func(i, j int) bool {
		return *rated[i].Rate < *rated[j].Rate
	})

	l.Info().Int("reachable", len(rated)).Int("unreachable", len(unreachable)).Msg("Rating batch finished.")
	return append(rated, unreachable...)
}
