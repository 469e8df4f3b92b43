package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"zgo.at/zsql"
	"zgo.at/zsql/internal/sqlparse"
)

func newRunCmd(flags *rootFlags) *cobra.Command {
	var slow time.Duration
	cmd := &cobra.Command{
		Use:   "run <file.sql>",
		Short: "Run every statement in a file",
		Long: `Run every statement in a file, in order, stopping at the first error.

Statements are separated by semicolons outside of strings and comments.
Afterwards the statements that took at least the --slow duration are
printed with their run time; --slow 0 prints every statement.`,
		Example: `  zsql run schema.sql
  zsql run import.sql --slow 100ms`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			db, err := openDB(cmd, flags)
			if err != nil {
				return err
			}
			defer db.Close()

			stmts := sqlparse.Split(string(script), splitConfig(db.SQLDialect()))
			for i, s := range stmts {
				slog.Debug("run", "statement", i+1, "total", len(stmts))
				if err := db.Exec(cmd.Context(), s, nil); err != nil {
					return fmt.Errorf("statement %d: %w", i+1, err)
				}
			}

			w := cmd.OutOrStdout()
			word := "statements"
			if len(stmts) == 1 {
				word = "statement"
			}
			fmt.Fprintf(w, "%d %s run\n", len(stmts), word)

			if sq := db.SlowQueries(slow); len(sq) > 0 {
				fmt.Fprintf(w, "\nSlower than %s:\n", slow)
				for _, e := range sq {
					fmt.Fprintf(w, "  %-12s %s\n", e.Took.Round(time.Microsecond), e.Query)
				}
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&slow, "slow", zsql.SlowQuery,
		"Print statements that took at least this long")
	return cmd
}

func splitConfig(d zsql.Dialect) sqlparse.Config {
	switch d {
	case zsql.DialectPostgreSQL:
		return sqlparse.PostgreSQLConfig()
	case zsql.DialectMySQL, zsql.DialectMariaDB:
		return sqlparse.MySQLConfig()
	case zsql.DialectDuckDB:
		return sqlparse.DuckDBConfig()
	default:
		return sqlparse.SQLiteConfig()
	}
}
