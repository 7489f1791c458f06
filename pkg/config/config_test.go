package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xplshn/boltc/pkg/cli"
)

func TestDefaults(t *testing.T) {
	cfg := NewConfig()
	assert.True(t, cfg.IsFeatureEnabled(FeatCComments))
	assert.True(t, cfg.IsFeatureEnabled(FeatInclude))
	assert.False(t, cfg.IsFeatureEnabled(FeatImplicitEpilogue))
	assert.True(t, cfg.IsWarningEnabled(WarnSkippedToken))
	assert.False(t, cfg.IsWarningEnabled(WarnPedantic))
	assert.Equal(t, "nasm", cfg.BackendName)
	assert.Len(t, cfg.Features, int(FeatCount))
	assert.Len(t, cfg.Warnings, int(WarnCount))
}

func TestApplyFlag(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.ApplyFlag("-Wno-overflow"))
	assert.False(t, cfg.IsWarningEnabled(WarnOverflow))
	require.NoError(t, cfg.ApplyFlag("-Woverflow"))
	assert.True(t, cfg.IsWarningEnabled(WarnOverflow))
	require.NoError(t, cfg.ApplyFlag("-Fimplicit-epilogue"))
	assert.True(t, cfg.IsFeatureEnabled(FeatImplicitEpilogue))
	require.NoError(t, cfg.ApplyFlag("-Fno-c-comments"))
	assert.False(t, cfg.IsFeatureEnabled(FeatCComments))

	assert.Error(t, cfg.ApplyFlag("-Wbogus"))
	assert.Error(t, cfg.ApplyFlag("-Fbogus"))
	assert.Error(t, cfg.ApplyFlag("-X"))
}

func TestWallAndPedantic(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.ApplyFlag("-Wno-all"))
	for w := Warning(0); w < WarnCount; w++ {
		assert.False(t, cfg.IsWarningEnabled(w), cfg.Warnings[w].Name)
	}
	require.NoError(t, cfg.ApplyFlag("-Wall"))
	assert.True(t, cfg.IsWarningEnabled(WarnMissingReturn))
	assert.False(t, cfg.IsWarningEnabled(WarnPedantic))

	cfg.SetPedantic()
	assert.True(t, cfg.IsWarningEnabled(WarnPedantic))
}

func TestSetTarget(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.SetTarget("linux", "amd64", "nasm"))
	assert.Equal(t, "nasm", cfg.BackendName)
	assert.Equal(t, "elf64", cfg.BackendTarget)

	require.NoError(t, cfg.SetTarget("linux", "arm64", "qbe/arm64"))
	assert.Equal(t, "qbe", cfg.BackendName)
	assert.Equal(t, "arm64", cfg.BackendTarget)
	assert.Equal(t, "arm64", cfg.TargetArch)

	require.NoError(t, cfg.SetTarget("linux", "amd64", "qbe"))
	assert.NotEmpty(t, cfg.BackendTarget)

	assert.Error(t, cfg.SetTarget("linux", "amd64", "nasm/macho64"))
	assert.Error(t, cfg.SetTarget("linux", "amd64", "llvm"))
}

func TestFlagGroups(t *testing.T) {
	cfg := NewConfig()
	fs := cli.NewFlagSet("test")
	warnings, features := cfg.SetupFlagGroups(fs)
	require.Len(t, warnings, int(WarnCount))
	require.Len(t, features, int(FeatCount))

	require.NoError(t, fs.Parse([]string{"-Wno-skipped-token", "-Fimplicit-epilogue", "-Fno-include", "in.c"}))
	cfg.ApplyFlagGroups(warnings, features)

	assert.Equal(t, []string{"in.c"}, fs.Args())
	assert.False(t, cfg.IsWarningEnabled(WarnSkippedToken))
	assert.True(t, cfg.IsWarningEnabled(WarnOverflow))
	assert.True(t, cfg.IsFeatureEnabled(FeatImplicitEpilogue))
	assert.False(t, cfg.IsFeatureEnabled(FeatInclude))
	assert.True(t, cfg.IsFeatureEnabled(FeatCComments))
}

func TestSetAllWarnings(t *testing.T) {
	cfg := NewConfig()
	cfg.SetAllWarnings(false)
	for w := Warning(0); w < WarnCount; w++ {
		assert.False(t, cfg.IsWarningEnabled(w), cfg.Warnings[w].Name)
	}
	cfg.SetAllWarnings(true)
	assert.True(t, cfg.IsWarningEnabled(WarnSkippedToken))
	assert.True(t, cfg.IsWarningEnabled(WarnOverflow))
	assert.False(t, cfg.IsWarningEnabled(WarnPedantic))
}
