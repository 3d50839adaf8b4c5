// Package provider fetches threat-intelligence feeds from their source
// and keeps the published snapshot current.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/golang/snappy"
	"gopkg.in/yaml.v3"

	"github.com/gofastercloud/attackgraph/pkg/attack"
)

// Provider fetches one complete feed document. Implementations must be
// safe for repeated calls; the refresher invokes Fetch on every cycle.
type Provider interface {
	Fetch(ctx context.Context) (*attack.Feed, error)
	Name() string
}

// decodeFeed parses a raw feed payload. The name's extension selects the
// format; a .sz suffix marks snappy block compression around the inner
// format, e.g. enterprise-attack.json.sz.
func decodeFeed(name string, data []byte) (*attack.Feed, error) {
	if strings.HasSuffix(name, ".sz") {
		decoded, err := snappy.Decode(nil, data)
		if err != nil {
			return nil, fmt.Errorf("snappy decode %s: %w", name, err)
		}
		data = decoded
		name = strings.TrimSuffix(name, ".sz")
	}

	var feed attack.Feed
	switch ext := path.Ext(name); ext {
	case ".json":
		if err := json.Unmarshal(data, &feed); err != nil {
			return nil, fmt.Errorf("parse JSON feed %s: %w", name, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &feed); err != nil {
			return nil, fmt.Errorf("parse YAML feed %s: %w", name, err)
		}
	default:
		return nil, fmt.Errorf("unsupported feed format %q for %s", ext, name)
	}
	return &feed, nil
}

// EncodeFeed serializes a feed the way decodeFeed reads it, for tooling
// that produces compressed feed files.
func EncodeFeed(name string, feed *attack.Feed) ([]byte, error) {
	compress := strings.HasSuffix(name, ".sz")
	inner := strings.TrimSuffix(name, ".sz")

	var data []byte
	var err error
	switch ext := path.Ext(inner); ext {
	case ".json":
		data, err = json.Marshal(feed)
	case ".yaml", ".yml":
		data, err = yaml.Marshal(feed)
	default:
		return nil, fmt.Errorf("unsupported feed format %q for %s", ext, name)
	}
	if err != nil {
		return nil, fmt.Errorf("encode feed %s: %w", name, err)
	}
	if compress {
		data = snappy.Encode(nil, data)
	}
	return data, nil
}
