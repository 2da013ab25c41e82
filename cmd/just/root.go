package main

import (
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/just-cli/just/internal/config"
	"github.com/just-cli/just/internal/errors"
)

// Build-time variables (set by goreleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Config holds the global flag values and the resolved configuration
type Config struct {
	ConfigStr   string
	FormatStr   string
	SSHStr      string
	LogLevelStr string

	formatSet   bool
	sshSet      bool
	logLevelSet bool

	// lead is the number of leading argv tokens that were global flags
	lead int

	Resolved config.Resolved
}

// GlobalConfig holds the global configuration state
var GlobalConfig = &Config{}

// Options builds config resolution options from the CLI values and the environment
func (c *Config) Options() config.Options {
	return config.OptionsFromEnv(config.Options{
		ConfigPath:     c.ConfigStr,
		CLIFormat:      c.FormatStr,
		CLIFormatSet:   c.formatSet,
		CLISSHHost:     c.SSHStr,
		CLISSHHostSet:  c.sshSet,
		CLILogLevel:    c.LogLevelStr,
		CLILogLevelSet: c.logLevelSet,
	}, os.Getenv)
}

// NewRootCommand creates the root command. Global flags have no shorthands
// so that extension options can use any single-letter flag.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "just",
		Short:         "Turn shell commands into reusable, parameterized sub-commands",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	bindGlobalFlags(root.PersistentFlags(), GlobalConfig)
	return root
}

func bindGlobalFlags(fs *pflag.FlagSet, c *Config) {
	fs.StringVar(&c.ConfigStr, "config", "", "Config file path (YAML); default: ./just.yaml or $HOME/.config/just/just.yaml")
	fs.StringVar(&c.FormatStr, "format", "auto", "Output format: json|yaml|table|csv|auto")
	fs.StringVar(&c.SSHStr, "ssh", "", "Run extensions on a configured SSH host (config: ssh_hosts.<name>)")
	fs.StringVar(&c.LogLevelStr, "log-level", "", "Log level: debug|info|warn|error")
}

// prescan reads the global flags before cobra runs: extensions are mounted
// as commands, so the config (and with it the store) must be known first.
// Only flags before the first command word are read; everything after it
// belongs to that command, so an extension may declare --config or --ssh itself.
func prescan(args []string) *Config {
	c := &Config{}
	fs := pflag.NewFlagSet("prescan", pflag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.SetOutput(io.Discard)
	fs.BoolP("help", "h", false, "")
	bindGlobalFlags(fs, c)
	_ = fs.Parse(args)

	c.formatSet = fs.Changed("format")
	c.sshSet = fs.Changed("ssh")
	c.logLevelSet = fs.Changed("log-level")
	c.lead = len(args) - len(fs.Args())
	return c
}

// lateGlobals returns the bootstrap-relevant global flags that cobra parsed
// after the command word with a value the prescan did not see.
func lateGlobals(root *cobra.Command, pre *Config) []string {
	pf := root.PersistentFlags()
	var late []string
	for name, seen := range map[string]string{
		"config":    pre.ConfigStr,
		"ssh":       pre.SSHStr,
		"log-level": pre.LogLevelStr,
	} {
		if f := pf.Lookup(name); f != nil && f.Changed && f.Value.String() != seen {
			late = append(late, "--"+name)
		}
	}
	sort.Strings(late)
	return late
}

// newPreRun finishes global flag handling once cobra has picked the command.
// Built-in commands accept global flags anywhere and are re-bootstrapped when
// one changes the config. Extension commands parse their own flags, so cobra
// never sets a global flag for them.
func newPreRun(root *cobra.Command, env *Env, pre *Config) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		pf := root.PersistentFlags()
		if pf.Changed("config") && GlobalConfig.ConfigStr == "" {
			return errors.New(errors.CodeCfgInvalid, "config path is empty", nil)
		}
		if late := lateGlobals(root, pre); len(late) > 0 {
			env.Logger.Debug("global flags after the command, reloading", "flags", late)
			GlobalConfig.formatSet = pf.Changed("format")
			GlobalConfig.sshSet = pf.Changed("ssh")
			GlobalConfig.logLevelSet = pf.Changed("log-level")
			_ = env.Store.Close()
			if xe := bootstrap(cmd.Context(), root, env, GlobalConfig.Options()); xe != nil {
				return xe
			}
		}
		// CLI > ENV > Config
		if !pf.Changed("format") {
			GlobalConfig.FormatStr = GlobalConfig.Resolved.Format
		}
		return nil
	}
}
