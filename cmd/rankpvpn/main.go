package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/glls/rankPrivateVPNServers/internal/shared/config"
	"github.com/glls/rankPrivateVPNServers/internal/shared/logger"
	"github.com/glls/rankPrivateVPNServers/serverpool/filter"
	"github.com/glls/rankPrivateVPNServers/serverpool/rater"
	"github.com/glls/rankPrivateVPNServers/serverpool/report"
	"github.com/glls/rankPrivateVPNServers/serverpool/scraper"
	"github.com/glls/rankPrivateVPNServers/serverpool/session"
	"github.com/glls/rankPrivateVPNServers/serverpool/storage"
)

// multiFlag collects repeatable string flags.
type multiFlag []string

func (m *multiFlag) String() string {
	return strings.Join(*m, ",")
}

func (m *multiFlag) Set(value string) error {
	*m = append(*m, value)
	return nil
}

func main() {
	var (
		countries multiFlag
		include   multiFlag
		exclude   multiFlag
	)

	configPath := flag.String("config", "rankpvpn.ini", "Path to the optional ini config file")
	connTimeout := flag.Int("connection-timeout", 5, "The number of seconds to wait before a connection times out")
	cacheTimeout := flag.Int("cache-timeout", 300, "The cache timeout in seconds for the retrieved server data (0 disables caching)")
	threads := flag.Int("threads", 5, "The number of workers to use when rating servers")
	sortBy := flag.String("sort", "", "Sort the server list ("+strings.Join(sortKeys(), ", ")+")")
	listCountries := flag.Bool("list-countries", false, "Display a table of the distribution of servers by country")
	info := flag.Bool("info", false, "Print server information instead of a server list; filter options apply")
	verbose := flag.Bool("verbose", false, "Print extra information to STDERR")
	save := flag.String("save", "", "Save the server list to the given path")
	sourceFile := flag.String("source-file", "", "Parse a saved copy of the server list page instead of retrieving it")

	fastest := flag.Int("fastest", 0, "Return the n fastest servers that meet the other criteria")
	flag.IntVar(fastest, "f", 0, "Shorthand for -fastest")
	number := flag.Int("number", 0, "Return at most n servers")
	flag.IntVar(number, "n", 0, "Shorthand for -number")
	random := flag.Bool("random", false, "Shuffle the final server list")
	flag.BoolVar(random, "r", false, "Shorthand for -random")
	flag.Var(&countries, "country", "Match one of the given countries; repeatable (case-insensitive name or code)")
	flag.Var(&countries, "c", "Shorthand for -country")
	flag.Var(&include, "include", "Include servers whose address matches <regex>; repeatable")
	flag.Var(&include, "i", "Shorthand for -include")
	flag.Var(&exclude, "exclude", "Exclude servers whose address matches <regex>; repeatable")
	flag.Var(&exclude, "x", "Shorthand for -exclude")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fatal: Failed to load config file '%s': %v\n", *configPath, err)
		os.Exit(1)
	}

	// Flags given on the command line win over the config file.
	visited := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { visited[f.Name] = true })
	if visited["threads"] {
		cfg.Threads = *threads
	}
	if visited["connection-timeout"] {
		cfg.ConnectionTimeout = *connTimeout
	}
	if visited["cache-timeout"] {
		cfg.CacheTimeout = *cacheTimeout
	}

	if *verbose {
		cfg.Level = "info"
	}
	if err := logger.Init(cfg.LogConf); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal: Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if *sortBy != "" {
		if _, ok := session.SortTypes[*sortBy]; !ok {
			fail(fmt.Errorf("unknown sort key %q, expected one of: %s", *sortBy, strings.Join(sortKeys(), ", ")))
		}
	}

	timeout := time.Duration(cfg.ConnectionTimeout) * time.Second
	interval := time.Duration(cfg.IntervalMs) * time.Millisecond

	var source scraper.Source
	if *sourceFile != "" {
		source = scraper.NewFileSource(*sourceFile)
	} else {
		source = scraper.NewPrivateVPNSource(timeout)
	}

	var prober rater.Prober
	switch cfg.Mode {
	case "socks5":
		prober = rater.NewSocks5Prober(cfg.Count, interval, timeout, cfg.SocksPort, cfg.Target)
	default:
		prober = rater.NewTCPProber(cfg.Count, interval, timeout, cfg.Port)
	}

	sess := session.New(session.Options{
		Source:          source,
		Cache:           storage.NewFileCache(cfg.CacheFile),
		Prober:          prober,
		Threads:         cfg.Threads,
		CacheTimeout:    time.Duration(cfg.CacheTimeout) * time.Second,
		RefreshInterval: time.Duration(cfg.RefreshInterval) * time.Second,
	})

	if *listCountries {
		counts, err := sess.ListCountries()
		if err != nil {
			fail(err)
		}
		fmt.Print(report.Countries(counts))
		return
	}

	endpoints, err := sess.Select(session.SelectOptions{
		Filter: filter.Options{
			Countries: countries,
			Include:   include,
			Exclude:   exclude,
		},
		Fastest: *fastest,
		SortBy:  *sortBy,
		Number:  *number,
		Random:  *random,
	})
	if err != nil {
		fail(err)
	}
	if len(endpoints) == 0 {
		fail(session.ErrNoServers)
	}

	if *info {
		fmt.Print(report.Info(endpoints))
		return
	}

	text := report.ServerList(endpoints, report.Meta{
		Cmd:       report.Command(os.Args[1:]),
		From:      scraper.ServerListURL,
		Retrieved: sess.RetrievedAt(),
		LastCheck: sess.Data().LastCheck,
	}, report.Options{
		// Country tags only make sense on a country-sorted list; rates
		// are only known when the pipeline probed the servers.
		IncludeCountry: *sortBy == session.SortByCountry,
		IncludeRate:    *sortBy == session.SortByRate || *fastest > 0,
	})
	if text == "" {
		fail(session.ErrNoServers)
	}

	if *save != "" {
		if err := os.WriteFile(*save, []byte(text), 0644); err != nil {
			fail(err)
		}
		return
	}
	fmt.Print(text)
}

func sortKeys() []string {
	keys := make([]string, 0, len(session.SortTypes))
	for k := range session.SortTypes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
