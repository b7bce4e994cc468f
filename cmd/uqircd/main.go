/*
uqircd runs the server, and helps with its configuration.

	uqircd run -c uqircd.toml
	uqircd mkpasswd
	uqircd version
*/
package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
	"gopkg.in/inconshreveable/log15.v2"

	"github.com/aarondl/uqircd/config"
	"github.com/aarondl/uqircd/core"
	"github.com/aarondl/uqircd/server"
)

const defaultConfigFile = "uqircd.toml"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "uqircd",
		Short:        "A TS6 irc server",
		SilenceUsage: true,
	}
	root.AddCommand(newRunCmd(), newMkpasswdCmd(), newVersionCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var filename string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the server until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(filename)
			if err != nil {
				return err
			}

			logger, err := server.NewLogger(cfg.Log, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			s, err := server.New(cfg, logger)
			if err != nil {
				return err
			}
			if err = s.Start(); err != nil {
				s.Loader.UnloadAll()
				return err
			}

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sig)

			logger.Info("Running", "name", cfg.Server.Name, "sid", cfg.Server.SID, "version", core.Version)
			got := <-sig
			logger.Info("Stopping", "signal", got)

			s.Stop()
			s.Wait()
			s.Loader.UnloadAll()
			return nil
		},
	}

	cmd.Flags().StringVarP(&filename, "config", "c", "", "config file, toml or yaml (default $"+config.EnvConfig+" or "+defaultConfigFile+")")
	return cmd
}

// loadConfig reads .env if there is one, then the config file named by the
// flag, the environment or the default, in that order.
func loadConfig(filename string) (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(errors.Cause(err)) {
		return nil, errors.Wrap(err, "uqircd: reading .env")
	}

	if len(filename) == 0 {
		filename = os.Getenv(config.EnvConfig)
	}
	if len(filename) == 0 {
		filename = defaultConfigFile
	}

	cfg, err := config.FromFile(filename)
	if err != nil {
		if cfg != nil {
			logger := log15.New()
			logger.SetHandler(log15.StreamHandler(os.Stderr, log15.LogfmtFormat()))
			cfg.DisplayErrors(logger)
		}
		return nil, errors.Wrapf(err, "uqircd: config %s", filename)
	}
	return cfg, nil
}

func newMkpasswdCmd() *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "mkpasswd",
		Short: "Hash a password for an oper block",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pass, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if len(pass) == 0 {
				return errors.New("uqircd: empty password")
			}

			hash, err := bcrypt.GenerateFromPassword(pass, cost)
			if err != nil {
				return errors.Wrap(err, "uqircd: hashing password")
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(hash))
			return nil
		},
	}

	cmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	return cmd
}

// readPassword prompts twice on a terminal, anything else gives one line.
func readPassword(in io.Reader, prompt io.Writer) ([]byte, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		p1, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return nil, err
		}
		fmt.Fprint(prompt, "\nReenter password: ")
		p2, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return nil, err
		}
		fmt.Fprintln(prompt)

		if !bytes.Equal(p1, p2) {
			return nil, errors.New("uqircd: passwords do not match")
		}
		return p1, nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "uqircd: reading password")
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), core.Version)
		},
	}
}
