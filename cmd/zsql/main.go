// Command zsql runs queries against databases from a zsql connections file.
//
// Only drivers that build without cgo are compiled in: mysql, mariadb, pgx,
// pq, and sqlite.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"zgo.at/zsql"
	"zgo.at/zsql/conf"

	_ "zgo.at/zsql/drivers/mariadb"
	_ "zgo.at/zsql/drivers/mysql"
	_ "zgo.at/zsql/drivers/pgx"
	_ "zgo.at/zsql/drivers/pq"
	_ "zgo.at/zsql/drivers/sqlite"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "zsql: %s\n", err)
		os.Exit(1)
	}
}

// rootFlags are the persistent flags shared by every subcommand.
type rootFlags struct {
	config     string
	connection string
	format     string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	flags := new(rootFlags)
	cmd := &cobra.Command{
		Use:   "zsql",
		Short: "Run queries against a configured database",
		Long: `zsql runs SQL against one of the databases in a connections file.

The file lists named connections; see the conf package for the format and
the ZSQL_* environment overrides. Which connection to use is selected with
-C; parameters are given as name=value arguments bound to :name
placeholders in the query text.`,
		Example: `  zsql query "select * from users where id = :id" id=5
  zsql -C logs -f json query "select * from errors"
  zsql exec "delete from sessions where expired = :e" e=1
  zsql run schema.sql --slow 100ms`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			lvl := slog.LevelWarn
			if flags.verbose {
				lvl = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(),
				&slog.HandlerOptions{Level: lvl})))
		},
	}

	cmd.PersistentFlags().StringVarP(&flags.config, "config", "c", "connections.yaml",
		"Path to the connections file")
	cmd.PersistentFlags().StringVarP(&flags.connection, "connection", "C", "main",
		"Name of the connection to use")
	cmd.PersistentFlags().StringVarP(&flags.format, "format", "f", "table",
		"Output format: table, json, or csv")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false,
		"Log what runs to stderr")

	cmd.AddCommand(newQueryCmd(flags), newExecCmd(flags), newRunCmd(flags),
		newTablesCmd(flags))
	return cmd
}

// openDB connects to the selected connection from the config file.
func openDB(cmd *cobra.Command, flags *rootFlags) (*zsql.DB, error) {
	db, err := conf.Connect(cmd.Context(), flags.config, flags.connection)
	if err != nil {
		return nil, err
	}
	slog.Debug("connected",
		"connection", flags.connection,
		"driver", db.DriverName(),
		"dialect", db.SQLDialect().String())
	return db, nil
}
