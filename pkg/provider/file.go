package provider

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofastercloud/attackgraph/pkg/attack"
)

// FileProvider reads a feed from the local filesystem.
type FileProvider struct {
	path string
}

// NewFileProvider creates a provider for the given feed file. The file
// does not need to exist yet; existence is checked on Fetch.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

// Path returns the feed file location, for filesystem watching.
func (p *FileProvider) Path() string {
	return p.path
}

func (p *FileProvider) Name() string {
	return fmt.Sprintf("file:%s", p.path)
}

func (p *FileProvider) Fetch(ctx context.Context) (*attack.Feed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("read feed file: %w", err)
	}
	return decodeFeed(filepath.Base(p.path), data)
}
