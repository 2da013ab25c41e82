package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/just-cli/just/internal/app"
	"github.com/just-cli/just/internal/config"
	"github.com/just-cli/just/internal/errors"
	"github.com/just-cli/just/internal/log"
	"github.com/just-cli/just/internal/output"
	"github.com/just-cli/just/internal/registry"
	"github.com/just-cli/just/internal/runner"
	"github.com/just-cli/just/internal/secret"
	"github.com/just-cli/just/internal/store"
)

// Env is shared by all commands of one process
type Env struct {
	App      app.App
	W        output.Writer
	Logger   *slog.Logger
	Store    store.Store
	Registry *registry.Registry
	Keyring  secret.KeyringAPI
	Prompt   *Prompter
	Stdin    io.Reader

	// globalArgs is how many leading argv tokens were global flags; commands
	// with flag parsing disabled receive them in args.
	globalArgs int

	// OpenRunner is replaceable in tests
	OpenRunner func(ctx context.Context) (runner.Runner, *errors.XError)
}

// bootstrap resolves the configuration, opens the store and loads the
// registry. Built-in command paths are seeded from root before any
// extension is mounted, so built-ins always win.
func bootstrap(ctx context.Context, root *cobra.Command, env *Env, opts config.Options) *errors.XError {
	r, xe := config.Resolve(opts)
	if xe != nil {
		return xe
	}
	GlobalConfig.Resolved = r
	env.Logger = log.New(env.W.Err, log.Options{
		Level:      r.Log.Level,
		File:       r.Log.File,
		MaxSizeMB:  r.Log.MaxSizeMB,
		MaxBackups: r.Log.MaxBackups,
	})
	env.OpenRunner = func(ctx context.Context) (runner.Runner, *errors.XError) {
		return runner.Open(ctx, GlobalConfig.Resolved, env.Keyring)
	}

	st, xe := app.OpenStore(ctx, r.Store, env.Keyring)
	if xe != nil {
		return xe
	}
	env.Store = st
	env.Logger.Debug("store opened", "driver", r.Store.Driver, "config", r.ConfigPath)

	recs, err := st.Load(ctx)
	if err != nil {
		return errors.AsOrWrap(err)
	}

	env.Registry = registry.New()
	seedBuiltins(env.Registry, root, nil)
	app.Mount(env.Registry, recs, env.Logger)
	return nil
}

func seedBuiltins(reg *registry.Registry, cmd *cobra.Command, prefix []string) {
	for _, c := range cmd.Commands() {
		path := append(prefix[:len(prefix):len(prefix)], c.Name())
		reg.AddBuiltin(path)
		for _, alias := range c.Aliases {
			reg.AddBuiltin(append(prefix[:len(prefix):len(prefix)], alias))
		}
		seedBuiltins(reg, c, path)
	}
	if prefix == nil {
		// cobra adds these lazily at Execute
		reg.AddBuiltin([]string{"help"})
		reg.AddBuiltin([]string{"completion"})
	}
}
