/*
Package config provides configuration of the tools working with the ledger.

Configuration is read from YAML files:

	Ledger:
	  DBConfiguration:
	    Type: boltdb
	    BoltDBOptions:
	      FilePath: ./chains/voting.bolt
	  FeePerSignature: 5000
	  MaxBlockhashAge: 150
	Programs:
	  voting: Exv9m3s2wcds1ajLMY9zMFhwdRcrX3FZyvWUSVdkUQxg
	Dump:
	  Label: devnet
	  Directory: testdata
*/
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/nspcc-dev/neo-go/pkg/core/storage/dbconfig"
	"github.com/nspcc-dev/voting-program/contracts"
	"github.com/nspcc-dev/voting-program/identity"
	"github.com/nspcc-dev/voting-program/ledger"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// DefaultDumpDirectory is the directory dumps are stored in by default.
const DefaultDumpDirectory = "testdata"

// Config is the top-level configuration.
type Config struct {
	Ledger   Ledger                       `yaml:"Ledger"`
	Programs map[string]identity.Identity `yaml:"Programs"`
	Dump     Dump                         `yaml:"Dump"`
}

// Ledger configures ledger instance.
type Ledger struct {
	DBConfiguration dbconfig.DBConfiguration `yaml:"DBConfiguration"`
	FeePerSignature uint64                   `yaml:"FeePerSignature"`
	MaxBlockhashAge int                      `yaml:"MaxBlockhashAge"`
}

// Dump configures state dumps.
type Dump struct {
	// Label of the dumped ledger environment (e.g. devnet).
	Label string `yaml:"Label"`
	// Directory to store dumps in.
	Directory string `yaml:"Directory"`
}

// Default returns configuration with in-memory ledger and programs deployed
// at their default addresses.
func Default() *Config {
	return &Config{
		Ledger: Ledger{
			DBConfiguration: dbconfig.DBConfiguration{Type: dbconfig.InMemoryDB},
		},
		Programs: contracts.DefaultIDs(),
		Dump: Dump{
			Directory: DefaultDumpDirectory,
		},
	}
}

// Load reads configuration from the YAML file. Missing fields keep default
// values.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Decode reads YAML configuration from r. Unknown fields are rejected.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode YAML config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks configuration consistency.
func (c *Config) Validate() error {
	switch c.Ledger.DBConfiguration.Type {
	case dbconfig.InMemoryDB, dbconfig.BoltDB, dbconfig.LevelDB:
	default:
		return fmt.Errorf("unsupported ledger DB type '%s'", c.Ledger.DBConfiguration.Type)
	}

	if c.Ledger.MaxBlockhashAge < 0 {
		return fmt.Errorf("negative max blockhash age %d", c.Ledger.MaxBlockhashAge)
	}

	for name, id := range c.Programs {
		if id.IsZero() {
			return fmt.Errorf("missing address of '%s' program", name)
		}
	}

	return nil
}

// LedgerConfig returns ledger parameters.
func (c *Config) LedgerConfig(log *zap.Logger) ledger.Config {
	return ledger.Config{
		Logger:          log,
		DB:              c.Ledger.DBConfiguration,
		FeePerSignature: c.Ledger.FeePerSignature,
		MaxBlockhashAge: c.Ledger.MaxBlockhashAge,
	}
}
