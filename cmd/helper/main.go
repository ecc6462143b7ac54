// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Command helper is the one-shot privileged helper process of spec.md §1:
// it serves exactly one IPC-authenticated request over a Unix socket, then
// exits. Grounded on the teacher's cmd/main.go + cmd/cmd/root.go split,
// narrowed to a single command (no subcommands — the helper has one job)
// in the style of cmd/cmd/scan.go's flag definitions.
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/flashkit/priv-helper/internal/config"
	"github.com/flashkit/priv-helper/internal/handler"
	"github.com/flashkit/priv-helper/internal/ipc"
	"github.com/flashkit/priv-helper/internal/logger"
	"github.com/flashkit/priv-helper/internal/shutdown"
	"github.com/flashkit/priv-helper/internal/version"
	"github.com/flashkit/priv-helper/pkg/sysinfo"
)

const appName = "privhelper"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          appName,
		Short:        appName + " - privileged USB/SD image flashing helper",
		SilenceUsage: true,
		RunE:         run,
	}

	cmd.Flags().String("socket", "", "path to the Unix domain socket to serve")
	cmd.Flags().String("client-bundle-id", "", "expected code-signing bundle identifier of the connecting peer")
	cmd.Flags().String("client-team-id", "", "expected code-signing team identifier of the connecting peer")
	cmd.Flags().String("log-level", "INFO", "minimum log level: DEBUG, INFO, WARN, ERROR")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	socketPath, _ := cmd.Flags().GetString("socket")
	clientBundleID, _ := cmd.Flags().GetString("client-bundle-id")
	clientTeamID, _ := cmd.Flags().GetString("client-team-id")
	logLevel, _ := cmd.Flags().GetString("log-level")

	cfg := config.FromFlags(socketPath, clientBundleID, clientTeamID, logLevel)

	if cfg.SocketPath == "" {
		return fmt.Errorf("socket path is required (--socket or HELPER_SOCKET_PATH)")
	}
	if cfg.ClientBundleID == "" || cfg.ClientTeamID == "" {
		return fmt.Errorf("client bundle/team id is required (--client-bundle-id/--client-team-id or HELPER_CLIENT_BUNDLE_ID/HELPER_CLIENT_TEAM_ID)")
	}

	// Every invocation is tagged with a fresh UUID so a GUI aggregating
	// log output from several helper invocations (one per flash attempt)
	// can grep a single operation's lines out of the combined stream —
	// internal/logger/logger.go's With() exists for exactly this.
	log := logger.New(os.Stderr, cfg.LogLevel).With(uuid.NewString())
	log.Infof("privhelper %s starting, socket=%s", version.String(), cfg.SocketPath)
	if sys, err := sysinfo.Stat(); err == nil {
		log.Infof("host os: %s %s (%s)", sys.Name, sys.Release, sys.Version)
	}

	sd := shutdown.Init(log)
	h := handler.New(log, sd)
	srv := ipc.NewServer(cfg.SocketPath, cfg.ClientBundleID, cfg.ClientTeamID, h)

	if err := srv.Serve(); err != nil {
		log.Errorf("serve failed: %v", err)
		sd.ExitWithError(err)
	}

	// Unreachable in practice: every Handle path that sets done=true also
	// calls sd.ExitSuccess/ExitWithError, which os.Exit(0)s. This return
	// only matters if Serve somehow returns nil without the handler ever
	// running (e.g. future dispatch paths) — exit 0 either way per
	// spec.md §4.H's "always exit status 0."
	return nil
}
