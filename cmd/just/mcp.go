package main

import (
	"os"

	"github.com/spf13/cobra"

	mcp_pkg "github.com/just-cli/just/internal/mcp"
)

// NewMCPCommand creates the MCP command group
func NewMCPCommand(env *Env) *cobra.Command {
	mcpCmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP (Model Context Protocol) server commands",
	}
	mcpCmd.AddCommand(newMCPServerCommand(env))
	return mcpCmd
}

type mcpServerOptions struct {
	transport        string
	transportSet     bool
	httpAddr         string
	httpAddrSet      bool
	httpAuthToken    string
	httpAuthTokenSet bool
}

// newMCPServerCommand creates the MCP server command
func newMCPServerCommand(env *Env) *cobra.Command {
	opts := &mcpServerOptions{}
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Expose extensions as MCP tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.transportSet = cmd.Flags().Changed("transport")
			opts.httpAddrSet = cmd.Flags().Changed("http-addr")
			opts.httpAuthTokenSet = cmd.Flags().Changed("http-auth-token")
			return runMCPServer(cmd, opts, env)
		},
	}
	cmd.Flags().StringVar(&opts.transport, "transport", mcp_pkg.TransportStdio, "MCP transport: stdio|streamable_http")
	cmd.Flags().StringVar(&opts.httpAddr, "http-addr", mcp_pkg.DefaultHTTPAddr, "Streamable HTTP listen address")
	cmd.Flags().StringVar(&opts.httpAuthToken, "http-auth-token", "", "Streamable HTTP auth token (required for streamable_http)")
	return cmd
}

func runMCPServer(cmd *cobra.Command, opts *mcpServerOptions, env *Env) error {
	resolved, xe := mcp_pkg.ResolveServerOptions(mcpOverrides(opts, os.Getenv), GlobalConfig.Resolved.File.MCP, env.Keyring)
	if xe != nil {
		return xe
	}
	h := mcp_pkg.NewToolHandler(env.Registry, env.OpenRunner, env.Keyring, env.Logger)
	server := mcp_pkg.CreateServer(version, h)
	env.Logger.Info("mcp server starting", "transport", resolved.Transport, "addr", resolved.HTTPAddr,
		"tools", len(env.Registry.Extensions()))
	return mcp_pkg.Serve(cmd.Context(), server, resolved)
}

// mcpOverrides applies CLI > ENV; the config file is merged by ResolveServerOptions.
func mcpOverrides(opts *mcpServerOptions, getenv func(string) string) mcp_pkg.ServerOverrides {
	return mcp_pkg.ServerOverrides{
		Transport: firstNonEmpty(valueIfSet(opts.transportSet, opts.transport), getenv("JUST_MCP_TRANSPORT")),
		HTTPAddr:  firstNonEmpty(valueIfSet(opts.httpAddrSet, opts.httpAddr), getenv("JUST_MCP_HTTP_ADDR")),
		AuthToken: firstNonEmpty(valueIfSet(opts.httpAuthTokenSet, opts.httpAuthToken), getenv("JUST_MCP_HTTP_AUTH_TOKEN")),
	}
}
