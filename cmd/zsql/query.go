package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"zgo.at/zsql"
)

func newQueryCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "query <sql> [param=value ...]",
		Short: "Run a query and print its rows",
		Long: `Run a query and print the rows it returns.

Parameters are :name placeholders in the query text, filled in from the
name=value arguments. Values are sent as text; the engine converts them.`,
		Example: `  zsql query "select * from users"
  zsql query "select * from users where id = :id" id=5`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(args[1:])
			if err != nil {
				return err
			}
			db, err := openDB(cmd, flags)
			if err != nil {
				return err
			}
			defer db.Close()

			r, err := db.Query(cmd.Context(), args[0], params)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), r, flags.format)
		},
	}
}

func newExecCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "exec <sql> [param=value ...]",
		Short: "Run a statement and print what it changed",
		Long: `Run a statement, printing the affected row count and the insert id if
the engine reports one. Parameters work as in query.`,
		Example: `  zsql exec "insert into tags (name) values (:n)" n=go`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(args[1:])
			if err != nil {
				return err
			}
			db, err := openDB(cmd, flags)
			if err != nil {
				return err
			}
			defer db.Close()

			err = db.Exec(cmd.Context(), args[0], params)
			if err != nil {
				return err
			}

			n := db.LastResult().NumRows()
			word := "rows"
			if n == 1 {
				word = "row"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d %s affected\n", n, word)
			if id := db.InsertID(); id != 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "insert id %d\n", id)
			}
			return nil
		},
	}
}

func newTablesCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the tables in the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openDB(cmd, flags)
			if err != nil {
				return err
			}
			defer db.Close()

			tables, err := db.ListTables(cmd.Context())
			if err != nil {
				return err
			}
			for _, tbl := range tables {
				fmt.Fprintln(cmd.OutOrStdout(), tbl)
			}
			return nil
		},
	}
}

// parseParams converts name=value arguments to query parameters.
func parseParams(args []string) (zsql.P, error) {
	if len(args) == 0 {
		return nil, nil
	}
	params := make(zsql.P, len(args))
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("parameter %q is not in name=value form", a)
		}
		params[k] = v
	}
	return params, nil
}
