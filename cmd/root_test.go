package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsCommand(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"defaults"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "NUM_USERS=5\n")
	assert.Contains(t, buf.String(), "TX_POWER_DBM=20\n")
}

func TestRunFlagsRegistered(t *testing.T) {
	for _, name := range []string{"config", "log", "output", "plot", "metrics-file", "redis-addr", "num-users", "tx-power-dbm", "seed", "channel-model"} {
		assert.NotNil(t, runCmd.Flags().Lookup(name), name)
	}
}
