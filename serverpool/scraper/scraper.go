package scraper

import "github.com/glls/rankPrivateVPNServers/serverpool/model"

// Source retrieves one snapshot of the provider's server list.
type Source interface {
	// Fetch retrieves and parses the server list. It should only retrieve
	// and parse; rating is someone else's job.
	Fetch() (*model.ServerData, error)

	// Name identifies the source in log output.
	Name() string
}
