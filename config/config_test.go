package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/storage/dbconfig"
	"github.com/nspcc-dev/voting-program/contracts"
	"github.com/nspcc-dev/voting-program/contracts/voting"
	"github.com/nspcc-dev/voting-program/identity"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testConfig = `
Ledger:
  DBConfiguration:
    Type: boltdb
    BoltDBOptions:
      FilePath: ./chains/voting.bolt
  FeePerSignature: 10
  MaxBlockhashAge: 5
Programs:
  voting: 1thX6LZfHDZZKUs92febYZhYRcXddmzfzF2NvTkPNE
Dump:
  Label: devnet
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, dbconfig.BoltDB, cfg.Ledger.DBConfiguration.Type)
	require.Equal(t, "./chains/voting.bolt", cfg.Ledger.DBConfiguration.BoltDBOptions.FilePath)
	require.Equal(t, identity.MustDecode("1thX6LZfHDZZKUs92febYZhYRcXddmzfzF2NvTkPNE"), cfg.Programs[contracts.NameVoting])
	require.Equal(t, "devnet", cfg.Dump.Label)
	require.Equal(t, DefaultDumpDirectory, cfg.Dump.Directory)

	lcfg := cfg.LedgerConfig(zap.NewNop())
	require.EqualValues(t, 10, lcfg.FeePerSignature)
	require.Equal(t, 5, lcfg.MaxBlockhashAge)
	require.Equal(t, cfg.Ledger.DBConfiguration, lcfg.DB)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
}

func TestDecode(t *testing.T) {
	cfg, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Equal(t, voting.DefaultProgramID, cfg.Programs[contracts.NameVoting])

	for name, data := range map[string]string{
		"unknown field":  "Foo: bar\n",
		"invalid db":     "Ledger:\n  DBConfiguration:\n    Type: redis\n",
		"invalid id":     "Programs:\n  voting: 0OIl\n",
		"negative age":   "Ledger:\n  MaxBlockhashAge: -1\n",
		"zero program":   "Programs:\n  voting: 11111111111111111111111111111111\n",
		"malformed yaml": "Ledger: [\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(data))
			require.Error(t, err)
		})
	}
}
