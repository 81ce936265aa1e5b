// Package config loads and validates a node's local configuration: its
// identity, value, listen address, static peer list, and gossip timing.
// The original simulation took this from ns-3 CommandLine flags
// (numNodes/branchFactor/secsToRun/d3); a standalone node instead reads it
// from a TOML file, since there is no simulator driving every node's
// lifecycle at once.
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-multierror"
)

// Config is the on-disk shape of a node's local configuration file.
type Config struct {
	// Node identifies this participant; must be nonzero.
	Node uint32 `toml:"node"`

	// Value is this node's fixed aggregation input. If Value is zero, the
	// node draws one uniformly at random instead, from a source seeded
	// with Seed (or with the current time when Seed is zero).
	Value float64 `toml:"value"`
	Seed  int64   `toml:"seed"`

	// Listen is the UDP address this node's gossip transport binds.
	Listen string `toml:"listen"`

	// Peers lists every other node this node may gossip with, each tagged
	// with its real protocol identifier. That identifier - not a peer's
	// position in this list - is what the gossip fabric as a whole uses to
	// name the neighbor (peer-map keys, rep/rep_next_hop), so it must match
	// what the peer itself is configured with as its own Node id; at least
	// one peer is required for the protocol to do anything.
	Peers []PeerConfig `toml:"peers"`

	// GossipInterval bounds how often a round of gossip fires: each round
	// waits a random duration in [0, GossipInterval) before picking a
	// neighbor and sending, mirroring the original's per-node randomized
	// transmit schedule.
	GossipInterval time.Duration `toml:"gossip_interval"`

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `toml:"log_level"`

	// JSONEvents is decoded from the file but not consulted:
	// cmd/hlevel-node always logs events as JSON, whatever its value.
	JSONEvents bool `toml:"json_events"`
}

// PeerConfig names one gossip neighbor: its real protocol identifier and
// the UDP address this node reaches it at.
type PeerConfig struct {
	ID   uint32 `toml:"id"`
	Addr string `toml:"addr"`
}

// Load reads and validates the TOML configuration at path.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: decoding %s: %w", path, err)
	}
	if err := cfg.applyDefaults().Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() *Config {
	if c.GossipInterval <= 0 {
		c.GossipInterval = 100 * time.Millisecond
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	return c
}

// Validate collects every problem with the configuration instead of
// stopping at the first, so an operator fixing a config file sees every
// mistake in one pass.
func (c *Config) Validate() error {
	var errs *multierror.Error

	if c.Node == 0 {
		errs = multierror.Append(errs, fmt.Errorf("node identifier must be nonzero"))
	}
	if c.Listen == "" {
		errs = multierror.Append(errs, fmt.Errorf("listen address must be set"))
	}
	if len(c.Peers) == 0 {
		errs = multierror.Append(errs, fmt.Errorf("at least one peer is required"))
	}
	for i, p := range c.Peers {
		if p.ID == 0 {
			errs = multierror.Append(errs, fmt.Errorf("peers[%d]: id must be nonzero", i))
		}
		if p.Addr == "" {
			errs = multierror.Append(errs, fmt.Errorf("peers[%d]: addr must be set", i))
		}
	}
	if c.GossipInterval <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("gossip_interval must be positive"))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = multierror.Append(errs, fmt.Errorf("log_level %q is not one of debug/info/warn/error", c.LogLevel))
	}

	return errs.ErrorOrNil()
}
