// Command appjail runs a single program inside a per-invocation sandbox:
// its own mount, PID and user namespaces, a private /tmp, /var/tmp and
// /home, a rebuilt /dev/pts and /dev/shm, and a capability set dropped to
// nothing before the program it's asked to run ever gets to execute.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sargun/appjail/internal/config"
	"github.com/sargun/appjail/internal/jail"
	"github.com/sargun/appjail/internal/launch"
)

const defaultConfigPath = "/etc/appjail.conf"

func main() {
	if launch.IsChild() {
		// This process is the re-exec'd child; it never returns to
		// cobra at all, since jail.Run either execs into the target
		// program or exits this process with an error.
		if err := launch.RunChild(); err != nil {
			logrus.WithError(err).Fatal("jail construction failed")
		}
		return
	}

	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath     string
	homeDir        string
	privateNetwork bool
	tmpfsSize      string
	verbose        bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{configPath: defaultConfigPath}

	cmd := &cobra.Command{
		Use:   "appjail [flags] [--] [command] [args...]",
		Short: "Run a program inside a per-invocation sandbox",
		Long: `appjail builds a disposable sandbox around a single program: a private
/tmp, /var/tmp and /home, a freshly rebuilt /dev/pts and /dev/shm, its own
controlling terminal, and a capability set dropped to nothing before the
program ever runs.

With no command given, appjail execs an interactive shell inside the
sandbox.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", opts.configPath, "path to the host policy file")
	cmd.Flags().StringVar(&opts.homeDir, "home", os.Getenv("HOME"), "home directory to carry into the sandbox")
	cmd.Flags().BoolVar(&opts.privateNetwork, "private-network", false, "place the sandbox in its own network namespace")
	cmd.Flags().StringVar(&opts.tmpfsSize, "tmpfs-size", "", "size ceiling for the sandbox's /dev/shm (e.g. 64m)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}

func runRoot(opts *rootOptions, args []string) error {
	if opts.verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		logrus.WithError(err).Warn("falling back to built-in defaults for host policy")
		cfg = nil
	}

	launchOpts := jail.LaunchOptions{
		Argv:           args,
		HomeDir:        opts.homeDir,
		PrivateNetwork: opts.privateNetwork,
		TmpfsSize:      opts.tmpfsSize,
	}

	if cfg != nil {
		if launchOpts.TmpfsSize == "" {
			launchOpts.TmpfsSize = cfg.MaxTmpfsSize
		}
		if !opts.privateNetwork {
			launchOpts.PrivateNetwork = cfg.PrivateNetworkDefault
		}
		launchOpts.AllowNewPrivs = cfg.AllowNewPrivsPermitted
	}

	cmd, err := launch.Launch(launchOpts)
	if err != nil {
		return fmt.Errorf("launch sandbox: %w", err)
	}

	stop, err := launch.ForwardSignals(cmd.Process.Pid)
	if err != nil {
		logrus.WithError(err).Warn("signal forwarding disabled")
	} else {
		defer stop()
	}

	if err := launch.Wait(cmd); err != nil {
		return fmt.Errorf("sandboxed program failed: %w", err)
	}

	return nil
}
