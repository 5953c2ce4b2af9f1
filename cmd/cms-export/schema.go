// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/cms-export/internal/export"
	"github.com/pdiddy/cms-export/internal/source"
)

var schemaCmd = &cobra.Command{
	Use:   "schema [database-url]",
	Short: "Check that the database has the tables and columns the export reads",
	Long: `Schema reflects every table the exporters join and reports missing
tables or columns without writing any files.`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE:         runSchema,
}

func runSchema(cmd *cobra.Command, args []string) error {
	cfg, err := exportConfig(args)
	if err != nil {
		return err
	}
	if len(args) > 1 || cfg.DatabaseURL == "" {
		return cmd.Usage()
	}

	ctx := context.Background()
	db, err := source.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	statuses, err := export.CheckSchema(ctx, db)
	if err != nil {
		return err
	}

	if bad := printSchema(os.Stdout, statuses); bad > 0 {
		return fmt.Errorf("%d table(s) do not match the expected schema", bad)
	}
	return nil
}

// printSchema writes one line per table and returns how many are unusable.
func printSchema(w io.Writer, statuses []export.TableStatus) int {
	bad := 0
	fmt.Fprintf(w, "%-28s  %-8s  %s\n", "Table", "Status", "Missing columns")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	for _, st := range statuses {
		status := "ok"
		switch {
		case !st.Present:
			status = "missing"
			bad++
		case len(st.Missing) > 0:
			status = "partial"
			bad++
		}
		fmt.Fprintf(w, "%-28s  %-8s  %s\n", st.Table, status, strings.Join(st.Missing, ", "))
	}
	return bad
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
