package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"extract", "filings", "lookup", "runs", "cache", "show"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "statements-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestExtractCommand_Flags(t *testing.T) {
	for _, name := range []string{"start", "end", "output", "no-store", "fiscal-year-end"} {
		require.NotNil(t, extractCmd.Flags().Lookup(name), "extract should have --%s", name)
	}
	assert.Equal(t, "0", extractCmd.Flags().Lookup("end").DefValue)
	assert.Equal(t, "o", extractCmd.Flags().Lookup("output").Shorthand)
}

func TestRunsCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range runsCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["list"])
	assert.True(t, names["show"])

	flag := runsListCmd.Flags().Lookup("limit")
	require.NotNil(t, flag)
	assert.Equal(t, "50", flag.DefValue)
}

func TestCacheCommand_HasPrune(t *testing.T) {
	require.Len(t, cacheCmd.Commands(), 1)
	assert.Equal(t, "prune", cacheCmd.Commands()[0].Name())
}

func TestShowCommand_DefaultStatement(t *testing.T) {
	flag := showCmd.Flags().Lookup("statement")
	require.NotNil(t, flag)
	assert.Equal(t, "income", flag.DefValue)
}
