package model

import "time"

// Endpoint is one candidate VPN server as listed on the provider's server
// page. It is built once at retrieval time; only the rate is attached later,
// by the rater. The URL is the join key between an endpoint and its rating
// result, so it must be unique within one retrieved set.
type Endpoint struct {
	Country     string `json:"country"`
	CountryCode string `json:"country_code"` // ISO-3166 alpha-2, "--" when unresolved
	City        string `json:"city"`
	URL         string `json:"url"`
	PortTap     string `json:"port_tap"`
	PortTun     string `json:"port_tun"`
	ProxySocks  string `json:"proxy_socks"`
	ProxyHTTP   string `json:"proxy_http"`

	// Rate is the mean round-trip time in milliseconds. nil means the
	// endpoint has not been rated; 0 means it was probed and found
	// unreachable. The two must stay distinct.
	Rate *float64 `json:"rate,omitempty"`
}

// SetRate attaches a measurement to the endpoint.
func (e *Endpoint) SetRate(ms float64) {
	e.Rate = &ms
}

// Rated reports whether the endpoint has been through a rating batch.
func (e *Endpoint) Rated() bool {
	return e.Rate != nil
}

// Reachable reports whether the endpoint answered its probes.
func (e *Endpoint) Reachable() bool {
	return e.Rate != nil && *e.Rate > 0
}

// ServerData is one retrieved snapshot of the provider's server list. It is
// what gets cached between runs.
type ServerData struct {
	Title     string      `json:"title"`
	Version   int         `json:"version"`
	Headers   []string    `json:"headers"`
	LastCheck time.Time   `json:"last_check"`
	Total     int         `json:"total"`
	Servers   []*Endpoint `json:"servers"`
}
