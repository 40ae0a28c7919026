package rater

import (
	"context"
	"net"
	"time"

	"golang.org/x/net/proxy"
)

// Prober measures round-trip latency to a single server address and returns
// the mean in milliseconds. Unreachability is data, not an error: any failure
// yields 0.
type Prober interface {
	Probe(address string) float64
}

// TCPProber measures latency as the time to establish a TCP connection. It
// sends Count probes spaced by Interval and averages the successful ones.
type TCPProber struct {
	Count    int
	Interval time.Duration
	Timeout  time.Duration
	Port     string // appended when the address has no port
}

// NewTCPProber creates a prober, clamping nonsensical settings to the
// defaults (3 probes, 300ms apart, 5s connection timeout, port 443).
func NewTCPProber(count int, interval, timeout time.Duration, port string) *TCPProber {
	if count <= 0 {
		count = 3
	}
	if interval <= 0 {
		interval = 300 * time.Millisecond
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if port == "" {
		port = "443"
	}
	return &TCPProber{Count: count, Interval: interval, Timeout: timeout, Port: port}
}

// Probe dials the address Count times and returns the mean time to connect.
func (p *TCPProber) Probe(address string) float64 {
	addr := address
	if _, _, err := net.SplitHostPort(address); err != nil {
		addr = net.JoinHostPort(address, p.Port)
	}

	var total time.Duration
	succeeded := 0
	for i := 0; i < p.Count; i++ {
		if i > 0 {
			time.Sleep(p.Interval)
		}
		start := time.Now()
		conn, err := net.DialTimeout("tcp", addr, p.Timeout)
		if err != nil {
			continue
		}
		total += time.Since(start)
		succeeded++
		conn.Close()
	}

	if succeeded == 0 {
		return 0
	}
	return float64(total.Microseconds()) / float64(succeeded) / 1000.0
}

// Socks5Prober measures latency as the time to open a connection to Target
// through the SOCKS5 proxy that each server exposes on ProxyPort. It verifies
// the proxy path end to end instead of bare reachability.
type Socks5Prober struct {
	Count     int
	Interval  time.Duration
	Timeout   time.Duration
	ProxyPort string
	Target    string
}

// NewSocks5Prober creates a SOCKS5 prober with the same clamping rules as
// NewTCPProber.
func NewSocks5Prober(count int, interval, timeout time.Duration, proxyPort, target string) *Socks5Prober {
	if count <= 0 {
		count = 3
	}
	if interval <= 0 {
		interval = 300 * time.Millisecond
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if proxyPort == "" {
		proxyPort = "1080"
	}
	if target == "" {
		target = "privatevpn.com:443"
	}
	return &Socks5Prober{
		Count:     count,
		Interval:  interval,
		Timeout:   timeout,
		ProxyPort: proxyPort,
		Target:    target,
	}
}

// Probe connects to Target through the proxy at address:ProxyPort Count times
// and returns the mean time for the tunnelled dial.
func (p *Socks5Prober) Probe(address string) float64 {
	proxyAddr := net.JoinHostPort(address, p.ProxyPort)
	dialer, err := proxy.SOCKS5("tcp", proxyAddr, nil, &net.Dialer{Timeout: p.Timeout})
	if err != nil {
		return 0
	}

	contextDialer, ok := dialer.(proxy.ContextDialer)
	if !ok {
		return 0
	}

	var total time.Duration
	succeeded := 0
	for i := 0; i < p.Count; i++ {
		if i > 0 {
			time.Sleep(p.Interval)
		}
		ctx, cancel := context.WithTimeout(context.Background(), p.Timeout)
		start := time.Now()
		conn, err := contextDialer.DialContext(ctx, "tcp", p.Target)
		cancel()
		if err != nil {
			continue
		}
		total += time.Since(start)
		succeeded++
		conn.Close()
	}

	if succeeded == 0 {
		return 0
	}
	return float64(total.Microseconds()) / float64(succeeded) / 1000.0
}
