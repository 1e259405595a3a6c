package locator

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/google/uuid"
)

// RingFile is the YAML layout of a static ring description.
type RingFile struct {
	Endpoints []RingFileEndpoint `yaml:"endpoints"`
}

type RingFileEndpoint struct {
	Address    string  `yaml:"address"`
	HostID     string  `yaml:"host_id"`
	Datacenter string  `yaml:"datacenter"`
	Rack       string  `yaml:"rack"`
	Tokens     []int64 `yaml:"tokens"`
}

// LoadRingFile reads a ring description from path.
func LoadRingFile(path string) (*TokenMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ring file: %w", err)
	}
	return ParseRingFile(data)
}

// ParseRingFile builds TokenMetadata from a YAML ring description. A token
// listed by two endpoints goes to the later one.
func ParseRingFile(data []byte) (*TokenMetadata, error) {
	var rf RingFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse ring file: %w", err)
	}

	tokens := make(map[Token]Endpoint)
	hostIDs := make(map[Endpoint]uuid.UUID)
	locations := make(map[Endpoint]Location)

	for i, e := range rf.Endpoints {
		if e.Address == "" {
			return nil, fmt.Errorf("ring file endpoint %d: missing address", i)
		}
		ep := Endpoint(e.Address)
		for _, t := range e.Tokens {
			tokens[Token(t)] = ep
		}
		if e.HostID != "" {
			id, err := uuid.Parse(e.HostID)
			if err != nil {
				return nil, fmt.Errorf("ring file endpoint %s: host_id: %w", e.Address, err)
			}
			hostIDs[ep] = id
		}
		if e.Datacenter != "" || e.Rack != "" {
			locations[ep] = Location{Datacenter: e.Datacenter, Rack: e.Rack}
		}
	}

	return NewTokenMetadata(tokens, hostIDs, NewTopology(locations))
}
