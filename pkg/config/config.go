package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/xplshn/boltc/pkg/cli"
	"modernc.org/libqbe"
)

type Feature int

const (
	FeatCComments Feature = iota
	FeatInclude
	FeatImplicitEpilogue
	FeatCount
)

type Warning int

const (
	WarnSkippedToken Warning = iota
	WarnMissingReturn
	WarnUnknownExpr
	WarnOverflow
	WarnPedantic
	WarnCount
)

type Info struct {
	Name        string
	Enabled     bool
	Description string
}

type Config struct {
	Features   map[Feature]Info
	Warnings   map[Warning]Info
	FeatureMap map[string]Feature
	WarningMap map[string]Warning

	BackendName   string
	BackendTarget string
	TargetArch    string
	GOOS          string
}

func NewConfig() *Config {
	cfg := &Config{
		FeatureMap: make(map[string]Feature),
		WarningMap: make(map[string]Warning),
	}

	features := map[Feature]Info{
		FeatCComments:        {"c-comments", true, "Recognize C-style '//' line comments."},
		FeatInclude:          {"include", true, "Recognize the '#include' marker."},
		FeatImplicitEpilogue: {"implicit-epilogue", false, "Emit a frame teardown for functions that fall off their end."},
	}

	warnings := map[Warning]Info{
		WarnSkippedToken:  {"skipped-token", true, "Warn when the parser discards a token it does not understand."},
		WarnMissingReturn: {"missing-return", true, "Warn about functions with no 'return' statement."},
		WarnUnknownExpr:   {"unknown-expr", true, "Warn when the code generator meets an expression it cannot emit."},
		WarnOverflow:      {"overflow", true, "Warn when an integer literal does not fit in a 64-bit register."},
		WarnPedantic:      {"pedantic", false, "Issue all warnings demanded by strict mode."},
	}

	cfg.Features, cfg.Warnings = features, warnings
	for ft, info := range features {
		cfg.FeatureMap[info.Name] = ft
	}
	for wt, info := range warnings {
		cfg.WarningMap[info.Name] = wt
	}
	cfg.BackendName = "nasm"
	return cfg
}

// SetTarget selects the backend from a "backend[/target]" string.
// For qbe without an explicit target the host target is used.
func (c *Config) SetTarget(goos, goarch, target string) error {
	c.GOOS, c.TargetArch = goos, goarch

	backend, backendTarget, _ := strings.Cut(target, "/")
	switch backend {
	case "", "nasm":
		if backendTarget != "" && backendTarget != "elf64" {
			return fmt.Errorf("unsupported nasm target '%s'. Supported: 'elf64'", backendTarget)
		}
		c.BackendName, c.BackendTarget = "nasm", "elf64"
	case "qbe":
		c.BackendName = "qbe"
		if backendTarget == "" {
			c.BackendTarget = libqbe.DefaultTarget(goos, goarch)
			fmt.Fprintf(os.Stderr, "boltc: info: no qbe target specified, defaulting to host target '%s'\n", c.BackendTarget)
		} else {
			c.BackendTarget = backendTarget
		}
		switch c.BackendTarget {
		case "amd64_sysv", "amd64_apple", "arm64", "arm64_apple", "rv64":
		default:
			fmt.Fprintf(os.Stderr, "boltc: warning: unrecognized or unsupported QBE target '%s'.\n", c.BackendTarget)
		}
	default:
		return fmt.Errorf("unsupported backend '%s'. Supported: 'nasm', 'qbe'", backend)
	}
	return nil
}

func (c *Config) SetFeature(ft Feature, enabled bool) {
	if info, ok := c.Features[ft]; ok {
		info.Enabled = enabled
		c.Features[ft] = info
	}
}

func (c *Config) IsFeatureEnabled(ft Feature) bool { return c.Features[ft].Enabled }

func (c *Config) SetWarning(wt Warning, enabled bool) {
	if info, ok := c.Warnings[wt]; ok {
		info.Enabled = enabled
		c.Warnings[wt] = info
	}
}

func (c *Config) IsWarningEnabled(wt Warning) bool { return c.Warnings[wt].Enabled }

// SetPedantic turns every warning on, pedantic included.
func (c *Config) SetPedantic() {
	for i := Warning(0); i < WarnCount; i++ {
		c.SetWarning(i, true)
	}
}

// SetAllWarnings toggles every warning except pedantic, like -Wall/-Wno-all.
func (c *Config) SetAllWarnings(enabled bool) {
	for i := Warning(0); i < WarnCount; i++ {
		if i != WarnPedantic {
			c.SetWarning(i, enabled)
		}
	}
}

// ApplyFlag applies a single -W/-F style flag such as "-Wno-skipped-token".
// Unknown names are reported as an error.
func (c *Config) ApplyFlag(flag string) error {
	trimmed := strings.TrimPrefix(flag, "-")
	isNo := strings.HasPrefix(trimmed, "Wno-") || strings.HasPrefix(trimmed, "Fno-")
	enable := !isNo

	var name string
	var isWarning bool

	switch {
	case strings.HasPrefix(trimmed, "W"):
		name = strings.TrimPrefix(trimmed, "W")
		isWarning = true
	case strings.HasPrefix(trimmed, "F"):
		name = strings.TrimPrefix(trimmed, "F")
	default:
		return fmt.Errorf("unrecognized flag '%s'", flag)
	}
	if isNo {
		name = strings.TrimPrefix(name, "no-")
	}

	if name == "all" && isWarning {
		c.SetAllWarnings(enable)
		return nil
	}

	if isWarning {
		w, ok := c.WarningMap[name]
		if !ok {
			return fmt.Errorf("unknown warning '%s'", name)
		}
		c.SetWarning(w, enable)
		return nil
	}
	f, ok := c.FeatureMap[name]
	if !ok {
		return fmt.Errorf("unknown feature '%s'", name)
	}
	c.SetFeature(f, enable)
	return nil
}

// SetupFlagGroups registers the -W<warning> and -F<feature> flag groups on fs.
// The returned entries are indexed by Warning and Feature respectively and are
// applied with ApplyFlagGroups once fs has been parsed.
func (c *Config) SetupFlagGroups(fs *cli.FlagSet) (warnings, features []cli.FlagGroupEntry) {
	warnings = make([]cli.FlagGroupEntry, WarnCount)
	for i := Warning(0); i < WarnCount; i++ {
		info := c.Warnings[i]
		warnings[i] = cli.FlagGroupEntry{
			Name: info.Name, Prefix: "W", Usage: info.Description, Default: info.Enabled,
			Enabled: new(bool), Disabled: new(bool),
		}
	}
	features = make([]cli.FlagGroupEntry, FeatCount)
	for i := Feature(0); i < FeatCount; i++ {
		info := c.Features[i]
		features[i] = cli.FlagGroupEntry{
			Name: info.Name, Prefix: "F", Usage: info.Description, Default: info.Enabled,
			Enabled: new(bool), Disabled: new(bool),
		}
	}
	fs.AddFlagGroup("Warning Flags", "Enable or disable specific warnings", "warning", "Available Warnings:", warnings)
	fs.AddFlagGroup("Feature Flags", "Enable or disable specific features", "feature", "Available feature flags:", features)
	return warnings, features
}

// ApplyFlagGroups applies the entries returned by SetupFlagGroups. Only flags
// given on the command line change anything; a -no- form wins over its
// positive form.
func (c *Config) ApplyFlagGroups(warnings, features []cli.FlagGroupEntry) {
	for i, entry := range warnings {
		if *entry.Enabled {
			c.SetWarning(Warning(i), true)
		}
		if *entry.Disabled {
			c.SetWarning(Warning(i), false)
		}
	}
	for i, entry := range features {
		if *entry.Enabled {
			c.SetFeature(Feature(i), true)
		}
		if *entry.Disabled {
			c.SetFeature(Feature(i), false)
		}
	}
}
