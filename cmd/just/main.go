package main

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"os/signal"

	"github.com/just-cli/just/internal/app"
	"github.com/just-cli/just/internal/errors"
	"github.com/just-cli/just/internal/output"
	"github.com/just-cli/just/internal/secret"
)

func main() {
	exit := run()
	os.Exit(exit)
}

// run is the main entry point
func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return runArgs(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

func runArgs(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	env := &Env{
		App:    app.New(version, commit, date),
		W:      output.New(stdout, stderr),
		Stdin:  stdin,
		Prompt: NewPrompter(stdin, stderr, stdin == os.Stdin && stdinIsTerminal()),
	}
	return execute(ctx, env, args, nil)
}

// execute builds the command tree for env and runs it. keyring may be nil
// (OS keyring).
func execute(ctx context.Context, env *Env, args []string, keyring secret.KeyringAPI) int {
	env.Keyring = keyring
	pre := prescan(args)
	opts := pre.Options()
	env.globalArgs = pre.lead

	GlobalConfig = &Config{}
	root := NewRootCommand()
	root.PersistentPreRunE = newPreRun(root, env, pre)
	root.SetArgs(args)
	root.SetIn(env.Stdin)
	root.SetOut(env.W.Out)
	root.SetErr(env.W.Err)

	root.AddCommand(NewSpecCommand(env))
	root.AddCommand(NewVersionCommand(env))
	root.AddCommand(NewExtCommand(env))
	root.AddCommand(NewMCPCommand(env))

	if xe := bootstrap(ctx, root, env, opts); xe != nil {
		_ = env.W.WriteError(resolveFormatForError(firstNonEmpty(valueIfSet(opts.CLIFormatSet, opts.CLIFormat), opts.EnvFormat)), xe)
		return int(errors.ExitCodeFor(xe.Code))
	}
	// bootstrap may run again for a built-in; close whichever store is current
	defer func() { _ = env.Store.Close() }()
	mountExtensions(root, env)

	if err := root.ExecuteContext(ctx); err != nil {
		var status exitStatus
		if stderrors.As(err, &status) {
			return int(status)
		}
		xe := normalizeErr(err)
		format := resolveFormatForError(GlobalConfig.Resolved.Format)
		_ = env.W.WriteError(format, xe)
		return int(errors.ExitCodeFor(xe.Code))
	}
	return int(errors.ExitOK)
}

func valueIfSet(set bool, value string) string {
	if !set {
		return ""
	}
	return value
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
