// Package config holds the solver's settings, loaded from flags, the
// environment and an optional config file.
package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigMaxDepth            = "max-depth"
	ConfigMaxTimeMs           = "max-time-ms"
	ConfigWeightsPath         = "weights-path"
	ConfigDebug               = "debug"
	ConfigThreads             = "threads"
	ConfigDisablePruning      = "disable-pruning"
	ConfigDisableTT           = "disable-tt"
	ConfigDisableFirstWin     = "disable-first-win"
	ConfigCacheMemoryFraction = "cache-memory-fraction"
	ConfigUniqueSuccessors    = "unique-successors"
	ConfigPuzzleMaxPieces     = "puzzle-max-pieces"
	ConfigConfigFile          = "config-file"
	ConfigCPUProfile          = "cpu-profile"
)

// Config wraps a viper instance so callers read settings with GetInt,
// GetBool and friends.
type Config struct {
	*viper.Viper
	args []string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(ConfigMaxDepth, 15)
	v.SetDefault(ConfigMaxTimeMs, 1000)
	v.SetDefault(ConfigWeightsPath, "")
	v.SetDefault(ConfigDebug, false)
	v.SetDefault(ConfigThreads, 1)
	v.SetDefault(ConfigDisablePruning, false)
	v.SetDefault(ConfigDisableTT, false)
	v.SetDefault(ConfigDisableFirstWin, false)
	v.SetDefault(ConfigCacheMemoryFraction, 0.25)
	v.SetDefault(ConfigUniqueSuccessors, false)
	v.SetDefault(ConfigPuzzleMaxPieces, 5)
}

// DefaultConfig returns a config holding only the defaults.
func DefaultConfig() *Config {
	v := viper.New()
	setDefaults(v)
	return &Config{Viper: v}
}

// Load parses args as flags and binds CHECKERS_ environment variables. A
// config file named by --config-file is merged in as well.
func (c *Config) Load(args []string) error {
	c.Viper = viper.New()
	setDefaults(c.Viper)

	fs := pflag.NewFlagSet("checkers", pflag.ContinueOnError)
	fs.Int(ConfigMaxDepth, 15, "maximum search depth in plies")
	fs.Int(ConfigMaxTimeMs, 1000, "time budget for one search in milliseconds")
	fs.String(ConfigWeightsPath, "", "YAML file with evaluation weights")
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.Int(ConfigThreads, 1, "number of independent searches to run at once")
	fs.Bool(ConfigDisablePruning, false, "exhaustive minimax (also disables the transposition table and first-win exit)")
	fs.Bool(ConfigDisableTT, false, "disable the transposition table")
	fs.Bool(ConfigDisableFirstWin, false, "keep searching after a forced win is found")
	fs.Float64(ConfigCacheMemoryFraction, 0.25, "fraction of system memory for the search caches (0 for no cap)")
	fs.Bool(ConfigUniqueSuccessors, false, "collapse successors that reach the same position")
	fs.Int(ConfigPuzzleMaxPieces, 5, "most red pieces in a generated puzzle seed")
	fs.String(ConfigConfigFile, "", "optional YAML config file")
	fs.String(ConfigCPUProfile, "", "write a CPU profile to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.BindPFlags(fs); err != nil {
		return err
	}
	c.args = fs.Args()

	c.SetEnvPrefix("checkers")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()

	if cf := c.GetString(ConfigConfigFile); cf != "" {
		c.SetConfigFile(cf)
		if err := c.ReadInConfig(); err != nil {
			return err
		}
	}
	return nil
}

// Args returns the arguments left over after flag parsing.
func (c *Config) Args() []string {
	return c.args
}

// AdjustRelativePaths resolves a relative weights path against basepath,
// usually the directory of the executable.
func (c *Config) AdjustRelativePaths(basepath string) {
	p := c.GetString(ConfigWeightsPath)
	if p != "" && !filepath.IsAbs(p) {
		c.Set(ConfigWeightsPath, filepath.Join(basepath, p))
	}
}

// MaxTime is the time budget of a single search.
func (c *Config) MaxTime() time.Duration {
	return time.Duration(c.GetInt(ConfigMaxTimeMs)) * time.Millisecond
}

// SanitizedSettings returns all settings for logging.
func (c *Config) SanitizedSettings() map[string]any {
	return c.AllSettings()
}
