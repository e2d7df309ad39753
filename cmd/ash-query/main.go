// Command ash-query runs named, parameterized queries against the shell
// history database and renders the results in one of several formats.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ashlog/ash/format"
	"github.com/ashlog/ash/histdb"
	"github.com/ashlog/ash/internal/ashenv"
	"github.com/ashlog/ash/internal/logging"
	"github.com/ashlog/ash/query"
)

const version = "0.9.0"

type options struct {
	database     string
	formatName   string
	limit        int
	printQuery   string
	queryName    string
	listFormats  bool
	hideHeadings bool
	listQueries  bool
	reverse      bool
	showVersion  bool
}

func main() {
	opts := &options{}
	cmd := newCommand(opts)

	// With no arguments, run the configured default query if there is one;
	// otherwise fall through to the usage text.
	if len(os.Args) == 1 {
		cfg := ashenv.Load(zap.NewNop())
		if def, ok := cfg.GetString("DEFAULT_QUERY"); ok && def != "" {
			opts.queryName = def
			if err := runQuery(cmd, opts, cfg); err != nil {
				fmt.Fprintf(os.Stderr, "ash-query: %v\n", err)
				os.Exit(1)
			}
			return
		}
		if !cfg.GetBool("HIDE_USAGE_FOR_NO_ARGS") {
			cmd.Usage()
		}
		os.Exit(1)
	}

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ash-query: %v\n", err)
		os.Exit(1)
	}
}

func newCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ash-query",
		Short:         "Query the shell history database using saved queries",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.database, "database", "d", "", "a history database to query")
	f.StringVarP(&opts.formatName, "format", "f", "", "a format to display results")
	f.IntVarP(&opts.limit, "limit", "l", 0, "a limit to the number of rows returned")
	f.StringVarP(&opts.printQuery, "print-query", "p", "", "print the query SQL")
	f.StringVarP(&opts.queryName, "query", "q", "", "the name of the saved query to execute")
	f.BoolVarP(&opts.listFormats, "list-formats", "F", false, "display all available formats")
	f.BoolVarP(&opts.hideHeadings, "hide-headings", "H", false, "hide column headings from query results")
	f.BoolVarP(&opts.listQueries, "list-queries", "Q", false, "display all saved queries")
	f.BoolVarP(&opts.reverse, "reverse", "R", false, "display results in reverse order")
	f.BoolVarP(&opts.showVersion, "version", "V", false, "print the version and exit")

	return cmd
}

// querySources returns the query definition files in priority order: the
// system file first, then the user file, so user definitions win.
func querySources(cfg *ashenv.Config) []string {
	var sources []string
	if sys, ok := cfg.GetString("SYSTEM_QUERY_FILE"); ok {
		sources = append(sources, sys)
	}
	if home, err := os.UserHomeDir(); err == nil {
		sources = append(sources, filepath.Join(home, ".ash", "queries"))
	}
	return sources
}

func run(cmd *cobra.Command, opts *options) error {
	if opts.showVersion {
		fmt.Fprintln(cmd.OutOrStdout(), version)
		return nil
	}

	cfg := ashenv.Load(zap.NewNop())

	switch {
	case opts.listQueries:
		log := logging.New(cfg, sessionTag())
		defer log.Sync()
		catalog := query.Load(querySources(cfg), log)
		return format.Aligned{}.Print(cmd.OutOrStdout(), catalog.List(), true)

	case opts.listFormats:
		return format.Aligned{}.Print(cmd.OutOrStdout(), format.List(), true)

	case opts.printQuery != "":
		log := logging.New(cfg, sessionTag())
		defer log.Sync()
		catalog := query.Load(querySources(cfg), log)
		raw, resolved, ok := catalog.Resolve(opts.printQuery, os.LookupEnv)
		if !ok {
			return notFound(cmd, catalog, opts.printQuery)
		}
		out := cmd.OutOrStdout()
		if raw != resolved {
			fmt.Fprintf(out, "Query: %s\nTemplate Form:\n%s\nActual SQL:\n%s\n",
				opts.printQuery, raw, resolved)
		} else {
			fmt.Fprintf(out, "Query: %s\n%s\n", opts.printQuery, resolved)
		}
		return nil

	case opts.queryName != "":
		return runQuery(cmd, opts, cfg)
	}

	return nil
}

// runQuery resolves the named query, executes it, and renders the result
// set with the chosen formatter.
func runQuery(cmd *cobra.Command, opts *options, cfg *ashenv.Config) error {
	log := logging.New(cfg, sessionTag())
	defer log.Sync()

	catalog := query.Load(querySources(cfg), log)
	_, sql, ok := catalog.Resolve(opts.queryName, os.LookupEnv)
	if !ok {
		return notFound(cmd, catalog, opts.queryName)
	}

	formatName := opts.formatName
	if formatName == "" {
		if def, ok := cfg.GetString("DEFAULT_FORMAT"); ok && def != "" {
			formatName = def
		} else {
			formatName = "aligned"
		}
	}
	formatter, ok := format.Lookup(formatName)
	if !ok {
		fmt.Fprintf(cmd.ErrOrStderr(), "Unknown format: %q\n\n", formatName)
		format.Aligned{}.Print(cmd.ErrOrStderr(), format.List(), true)
		return fmt.Errorf("unknown format %q", formatName)
	}

	dbPath := opts.database
	if dbPath == "" {
		dbPath, _ = cfg.GetString("HISTORY_DB")
		if dbPath == "" {
			return fmt.Errorf("expected either --database or ASH_CFG_HISTORY_DB to be defined")
		}
	}
	store, err := histdb.Open(dbPath, log)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	for _, rec := range []histdb.Record{&histdb.Session{}, &histdb.Command{}} {
		if err := store.EnsureTable(ctx, rec.Table(), rec.CreateTableSQL()); err != nil {
			return err
		}
	}

	rs, err := store.Fetch(ctx, sql, nil, opts.limit)
	if err != nil {
		return fmt.Errorf("failed to execute query %s: %w", opts.queryName, err)
	}
	if rs != nil && opts.reverse {
		rs.Reverse()
	}
	return formatter.Print(cmd.OutOrStdout(), rs, !opts.hideHeadings)
}

// notFound reports an unknown query name along with the available catalog.
func notFound(cmd *cobra.Command, catalog *query.Catalog, name string) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "Query not found: %s\nAvailable:\n", name)
	format.Aligned{}.Print(cmd.ErrOrStderr(), catalog.List(), true)
	return fmt.Errorf("query not found: %s", name)
}

func sessionTag() string {
	if id := os.Getenv("ASH_SESSION_ID"); id != "" {
		return id
	}
	return "NEW"
}
