// Package report renders the final endpoint selection as text: the server
// list file itself, the per-server info dump, and the country distribution
// table.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/glls/rankPrivateVPNServers/serverpool/model"
	"github.com/glls/rankPrivateVPNServers/serverpool/session"
)

const (
	displayTimeFormat = "2006-01-02 15:04:05 UTC"

	headerWidth = 80
	labelWidth  = 11
)

// Meta carries the provenance lines for the server list header.
type Meta struct {
	Cmd       string    // the invocation that produced the list
	From      string    // where the data came from
	Retrieved time.Time // when this session retrieved it
	LastCheck time.Time // the snapshot's own timestamp
}

// Options controls the optional annotations on server entries.
type Options struct {
	IncludeCountry bool // emit a country tag line per country group
	IncludeRate    bool // append the measured latency to each entry
}

// Command formats an argument vector for the header's With: line.
func Command(args []string) string {
	if len(args) == 0 {
		return "?"
	}
	quoted := make([]string, 0, len(args)+1)
	quoted = append(quoted, "rankpvpn")
	for _, a := range args {
		if strings.ContainsAny(a, " \t") {
			a = "'" + a + "'"
		}
		quoted = append(quoted, a)
	}
	return strings.Join(quoted, " ")
}

// ServerList renders the endpoints as a server list file. It returns the
// empty string when there is nothing to render, which callers must treat as
// the "no servers found" condition.
func ServerList(endpoints []*model.Endpoint, meta Meta, opts Options) string {
	if len(endpoints) == 0 {
		return ""
	}

	header := center("# PrivateVPN server list #", headerWidth, '#')
	border := strings.Repeat("#", len(header))

	var sb strings.Builder
	sb.WriteString(border + "\n" + header + "\n" + border + "\n\n")

	cmd := meta.Cmd
	if cmd == "" {
		cmd = "?"
	}
	for _, line := range []struct{ label, value string }{
		{"With:", cmd},
		{"When:", time.Now().UTC().Format(displayTimeFormat)},
		{"From:", meta.From},
		{"Retrieved:", meta.Retrieved.UTC().Format(displayTimeFormat)},
		{"Last Check:", meta.LastCheck.UTC().Format(displayTimeFormat)},
	} {
		fmt.Fprintf(&sb, "# %-*s %s\n", labelWidth, line.label, line.value)
	}
	sb.WriteString("\n")

	country := ""
	for _, e := range endpoints {
		if opts.IncludeCountry {
			tag := fmt.Sprintf("%s [%s]", e.Country, e.CountryCode)
			if tag != country {
				if country != "" {
					sb.WriteString("\n")
				}
				fmt.Fprintf(&sb, "# %s\n", tag)
				country = tag
			}
		}

		sb.WriteString("Server = " + e.URL)
		if opts.IncludeRate && e.Rated() {
			if e.Reachable() {
				fmt.Fprintf(&sb, " # %.2f ms", *e.Rate)
			} else {
				sb.WriteString(" # unreachable")
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// Info renders one block of field lines per endpoint, for --info mode.
func Info(endpoints []*model.Endpoint) string {
	var sb strings.Builder
	for _, e := range endpoints {
		sb.WriteString(e.URL + "\n")

		fields := []struct{ key, value string }{
			{"city", e.City},
			{"country", e.Country},
			{"country_code", e.CountryCode},
			{"port_tap", e.PortTap},
			{"port_tun", e.PortTun},
			{"proxy_http", e.ProxyHTTP},
			{"proxy_socks", e.ProxySocks},
		}
		for _, f := range fields {
			fmt.Fprintf(&sb, "%-12s : %s\n", f.key, f.value)
		}
		if e.Rated() {
			fmt.Fprintf(&sb, "%-12s : %.2f\n", "rate", *e.Rate)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Countries renders the {country, code} -> server count distribution as an
// aligned table sorted by country name.
func Countries(counts map[session.CountryKey]int) string {
	keys := make([]session.CountryKey, 0, len(counts))
	nameWidth := 0
	maxCount := 0
	for k, n := range counts {
		keys = append(keys, k)
		if len(k.Country) > nameWidth {
			nameWidth = len(k.Country)
		}
		if n > maxCount {
			maxCount = n
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Country < keys[j].Country })
	countWidth := len(fmt.Sprintf("%d", maxCount))

	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%-*s %s %*d\n", nameWidth, k.Country, k.Code, countWidth, counts[k])
	}
	return sb.String()
}

func center(s string, width int, pad byte) string {
	if len(s) >= width {
		return s
	}
	total := width - len(s)
	left := total / 2
	return strings.Repeat(string(pad), left) + s + strings.Repeat(string(pad), total-left)
}
