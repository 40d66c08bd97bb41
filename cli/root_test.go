package cli

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmdRegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range RootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["parse"])
	assert.True(t, names["update"])
}

func TestPersistentFlagsHaveExpectedDefaults(t *testing.T) {
	flag := RootCmd.PersistentFlags().Lookup("cache-strategy")
	require.NotNil(t, flag)
	assert.Equal(t, "dense", flag.DefValue)

	flag = RootCmd.PersistentFlags().Lookup("log-format")
	require.NotNil(t, flag)
	assert.Equal(t, "text", flag.DefValue)
}

func TestRootLoggerHonorsVerboseFlag(t *testing.T) {
	viper.Set("verbose", true)
	defer viper.Set("verbose", false)

	logger := rootLogger()
	assert.Equal(t, "debug", logger.GetLevel().String())
}
