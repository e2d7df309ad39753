// Command ash-log records shell sessions and commands into the history
// database. It is invoked from shell hooks: once with --get-session-id when
// a shell starts, once per command, and once with --end-session when the
// shell exits.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ashlog/ash/histdb"
	"github.com/ashlog/ash/internal/ashenv"
	"github.com/ashlog/ash/internal/logging"
	"github.com/ashlog/ash/internal/osinfo"
)

const version = "0.9.0"

type options struct {
	alert        string
	command      string
	exitCode     int
	pipeStatus   string
	start        int64
	finish       int64
	number       int
	exitWith     int
	getSessionID bool
	endSession   bool
	showVersion  bool
}

func main() {
	// An opt-out for recording-sensitive work: do nothing, exit clean.
	if os.Getenv("ASH_DISABLED") != "" {
		return
	}

	opts := &options{}
	cmd := newCommand(opts)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ash-log: %v\n", err)
		os.Exit(1)
	}
	os.Exit(opts.exitWith)
}

func newCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ash-log",
		Short:         "Log shell sessions and commands to the history database",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.alert, "alert", "a", "", "a message to display to the user")
	f.StringVarP(&opts.command, "command", "c", "", "a command to log")
	f.IntVarP(&opts.exitCode, "command-exit", "e", 0, "the exit code of the command to log")
	f.StringVarP(&opts.pipeStatus, "command-pipe-status", "p", "", "the underscore-joined pipe states of the command to log")
	f.Int64VarP(&opts.start, "command-start", "s", 0, "the timestamp when the command started")
	f.Int64VarP(&opts.finish, "command-finish", "f", 0, "the timestamp when the command stopped")
	f.IntVarP(&opts.number, "command-number", "n", 0, "the builtin shell history command number")
	f.IntVarP(&opts.exitWith, "exit", "x", 0, "the exit code to use when exiting")
	f.BoolVarP(&opts.getSessionID, "get-session-id", "S", false, "emit the session ID (or create one)")
	f.BoolVarP(&opts.endSession, "end-session", "E", false, "end the current session")
	f.BoolVarP(&opts.showVersion, "version", "V", false, "print the version and exit")

	return cmd
}

func run(cmd *cobra.Command, opts *options) error {
	if opts.showVersion {
		fmt.Fprintln(cmd.OutOrStdout(), version)
		return nil
	}

	cfg := ashenv.Load(zap.NewNop())
	sessionEnv := os.Getenv("ASH_SESSION_ID")
	logTag := sessionEnv
	if logTag == "" {
		logTag = "NEW"
	}
	log := logging.New(cfg, logTag)
	defer log.Sync()

	if opts.alert != "" {
		fmt.Fprintln(os.Stderr, opts.alert)
	}

	// With no flags at all there is nothing to log; show usage unless
	// configured not to.
	if cmd.Flags().NFlag() == 0 {
		if !cfg.GetBool("HIDE_USAGE_FOR_NO_ARGS") {
			cmd.Usage()
		}
		return nil
	}

	commandUsed := opts.command != "" ||
		cmd.Flags().Changed("command-exit") ||
		opts.pipeStatus != "" ||
		opts.start != 0 ||
		opts.finish != 0 ||
		opts.number != 0

	if !opts.getSessionID && !commandUsed && !opts.endSession {
		return nil
	}

	dbPath, _ := cfg.GetString("HISTORY_DB")
	store, err := histdb.Open(dbPath, log)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	info := osinfo.Snapshot()
	sessionID, _ := strconv.ParseInt(sessionEnv, 10, 64)

	if opts.getSessionID {
		if sessionEnv == "" {
			session := histdb.NewSession(info, os.Getenv)
			if err := store.EnsureTable(ctx, session.Table(), session.CreateTableSQL()); err != nil {
				return err
			}
			sessionID, err = store.Insert(ctx, session)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sessionID)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), sessionEnv)
		}
	}

	if commandUsed {
		command := histdb.NewCommand(info, os.Getenv, sessionID,
			opts.command, opts.exitCode, opts.start, opts.finish,
			opts.number, opts.pipeStatus)
		if err := store.EnsureTable(ctx, command.Table(), command.CreateTableSQL()); err != nil {
			return err
		}
		if _, err := store.Insert(ctx, command); err != nil {
			return err
		}
	}

	if opts.endSession {
		session := &histdb.Session{}
		if err := store.EnsureTable(ctx, session.Table(), session.CreateTableSQL()); err != nil {
			return err
		}
		if err := store.CloseSession(ctx, sessionID); err != nil {
			return err
		}
	}

	return nil
}
