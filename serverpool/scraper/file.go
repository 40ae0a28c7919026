package scraper

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/glls/rankPrivateVPNServers/serverpool/model"
)

// FileSource implements Source against a previously saved copy of the server
// list page. Useful offline and for inspecting a page snapshot.
type FileSource struct {
	path string
}

// NewFileSource creates a source reading the HTML document at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Name returns the source name.
func (s *FileSource) Name() string {
	return filepath.Base(s.path)
}

// Fetch parses the server table from the local document.
func (s *FileSource) Fetch() (*model.ServerData, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open server list file: %w", err)
	}
	defer f.Close()

	data, err := ParseReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse server list file %s: %w", s.path, err)
	}
	return data, nil
}
