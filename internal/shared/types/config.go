package types

// CommonConf holds the behaviour settings shared by every command path.
type CommonConf struct {
	Threads           int    `ini:"threads"`            // worker count for rating batches
	ConnectionTimeout int    `ini:"connection_timeout"` // seconds, per probe connection
	CacheTimeout      int    `ini:"cache_timeout"`      // seconds, 0 disables the cache file
	RefreshInterval   int    `ini:"refresh_interval"`   // seconds before a session re-retrieves
	CacheFile         string `ini:"cache_file"`         // overrides the default temp-dir cache path
}

// ProbeConf configures how a single server is measured.
type ProbeConf struct {
	Count      int    `ini:"count"`       // probes per server
	IntervalMs int    `ini:"interval_ms"` // delay between probes
	Mode       string `ini:"mode"`        // "tcp" or "socks5"
	Port       string `ini:"port"`        // default port when a server address has none
	SocksPort  string `ini:"socks_port"`  // proxy port used by the socks5 mode
	Target     string `ini:"target"`      // dial target behind the socks5 proxy
}

// LogConf contains logging specific configuration
type LogConf struct {
	Level string `ini:"level"`
}

// Config is the unified behaviour configuration, mapped from rankpvpn.ini.
type Config struct {
	CommonConf `ini:"common"`
	ProbeConf  `ini:"probe"`
	LogConf    `ini:"log"`
}

// Defaults mirror the original command-line defaults so a missing or partial
// ini file still yields a working setup.
func Defaults() *Config {
	return &Config{
		CommonConf: CommonConf{
			Threads:           5,
			ConnectionTimeout: 5,
			CacheTimeout:      300,
		},
		ProbeConf: ProbeConf{
			Count:      3,
			IntervalMs: 300,
			Mode:       "tcp",
			Port:       "443",
			SocksPort:  "1080",
			Target:     "privatevpn.com:443",
		},
		LogConf: LogConf{
			Level: "warn",
		},
	}
}
