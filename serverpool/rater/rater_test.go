package rater

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/glls/rankPrivateVPNServers/serverpool/model"
)

// fakeProber returns scripted latencies and records how the pool drives it.
type fakeProber struct {
	rates map[string]float64
	delay time.Duration

	mu          sync.Mutex
	calls       int
	inflight    int
	maxInflight int
}

func (f *fakeProber) Probe(address string) float64 {
	f.mu.Lock()
	f.calls++
	f.inflight++
	if f.inflight > f.maxInflight {
		f.maxInflight = f.inflight
	}
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.inflight--
	f.mu.Unlock()
	return f.rates[address]
}

func endpoints(urls ...string) []*model.Endpoint {
	eps := make([]*model.Endpoint, 0, len(urls))
	for _, u := range urls {
		eps = append(eps, &model.Endpoint{URL: u})
	}
	return eps
}

func TestRate_OrdersReachableFirstAscending(t *testing.T) {
	prober := &fakeProber{rates: map[string]float64{"a": 20, "b": 0, "c": 10}}
	eps := endpoints("a", "b", "c")

	got := New(prober).Rate(eps, 2)

	want := []string{"c", "a", "b"}
	if len(got) != len(want) {
		t.Fatalf("expected %d endpoints, got %d", len(want), len(got))
	}
	for i, url := range want {
		if got[i].URL != url {
			t.Errorf("position %d: expected %q, got %q", i, url, got[i].URL)
		}
	}

	if !got[0].Reachable() || *got[0].Rate != 10 {
		t.Errorf("expected c rated 10ms, got %v", got[0].Rate)
	}
	if got[2].Reachable() {
		t.Error("expected b to be unreachable")
	}
	if !got[2].Rated() {
		t.Error("unreachable endpoints must still carry a rating result")
	}
}

func TestRate_ProducesExactlyOneResultPerEndpoint(t *testing.T) {
	rates := make(map[string]float64)
	var urls []string
	for i := 0; i < 40; i++ {
		url := fmt.Sprintf("srv%02d.example", i)
		urls = append(urls, url)
		if i%2 == 0 {
			rates[url] = float64(100 - i) // reachable
		} // odd ones stay at the zero sentinel
	}
	prober := &fakeProber{rates: rates}
	eps := endpoints(urls...)

	got := New(prober).Rate(eps, 7)

	if prober.calls != len(eps) {
		t.Errorf("expected %d probes, got %d", len(eps), prober.calls)
	}
	if len(got) != len(eps) {
		t.Fatalf("expected %d results, got %d", len(eps), len(got))
	}
	for _, e := range got {
		if !e.Rated() {
			t.Fatalf("endpoint %q has no rating result", e.URL)
		}
	}

	// Reachable prefix in ascending order, unreachable suffix in original
	// relative order.
	split := 0
	for split < len(got) && got[split].Reachable() {
		split++
	}
	for i := 1; i < split; i++ {
		if *got[i-1].Rate > *got[i].Rate {
			t.Errorf("reachable servers out of order at %d: %v > %v", i, *got[i-1].Rate, *got[i].Rate)
		}
	}
	prev := -1
	for _, e := range got[split:] {
		if e.Reachable() {
			t.Errorf("reachable endpoint %q after unreachable ones", e.URL)
		}
		var idx int
		fmt.Sscanf(e.URL, "srv%d.example", &idx)
		if idx <= prev {
			t.Errorf("unreachable endpoints reordered: %d after %d", idx, prev)
		}
		prev = idx
	}
}

func TestRate_StableForEqualRates(t *testing.T) {
	prober := &fakeProber{rates: map[string]float64{"a": 5, "b": 5, "c": 5}}
	got := New(prober).Rate(endpoints("a", "b", "c"), 3)
	for i, url := range []string{"a", "b", "c"} {
		if got[i].URL != url {
			t.Errorf("tie ordering not stable: position %d is %q", i, got[i].URL)
		}
	}
}

func TestRate_ClampsConcurrencyToOne(t *testing.T) {
	prober := &fakeProber{rates: map[string]float64{"a": 1, "b": 2}, delay: 5 * time.Millisecond}
	got := New(prober).Rate(endpoints("a", "b"), 0)
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if prober.maxInflight != 1 {
		t.Errorf("concurrency=0 must behave as a single worker, saw %d in flight", prober.maxInflight)
	}
}

func TestRate_ClampsConcurrencyToEndpointCount(t *testing.T) {
	prober := &fakeProber{rates: map[string]float64{"a": 1, "b": 2, "c": 3}, delay: 20 * time.Millisecond}
	got := New(prober).Rate(endpoints("a", "b", "c"), 1000)
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	if prober.maxInflight > 3 {
		t.Errorf("expected at most 3 concurrent probes, saw %d", prober.maxInflight)
	}
}

func TestRate_EmptyInput(t *testing.T) {
	prober := &fakeProber{}
	done := make(chan []*model.Endpoint, 1)
	go func() {
		done <- New(prober).Rate(nil, 5)
	}()

	select {
	case got := <-done:
		if len(got) != 0 {
			t.Errorf("expected an empty result, got %d endpoints", len(got))
		}
	case <-time.After(time.Second):
		t.Fatal("Rate([]) must return without blocking")
	}
	if prober.calls != 0 {
		t.Errorf("expected no probes for empty input, got %d", prober.calls)
	}
}

func TestRate_AttachesRatesInPlace(t *testing.T) {
	prober := &fakeProber{rates: map[string]float64{"a": 7}}
	eps := endpoints("a")
	New(prober).Rate(eps, 1)
	if !eps[0].Rated() || *eps[0].Rate != 7 {
		t.Errorf("expected the input endpoint to carry the rate, got %v", eps[0].Rate)
	}
}
