package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rebeliceyang/lazybrowse/internal/export"
	"github.com/rebeliceyang/lazybrowse/internal/format"
	"github.com/rebeliceyang/lazybrowse/internal/models"
	"github.com/rebeliceyang/lazybrowse/internal/session"
	"github.com/spf13/cobra"
)

func newQueryCommand() *cobra.Command {
	var (
		projectID    int
		outputFormat string
	)

	cmd := &cobra.Command{
		Use:   "query <sql>",
		Short: "Execute a SQL query against a project's database",
		Long: `Execute a SQL query against a project's database and print the result.

The query is sent verbatim; add a LIMIT yourself for large tables.`,
		Example: `  lazybrowse query -p 7 "SELECT * FROM public.users LIMIT 10"
  lazybrowse query -p 7 --format csv "SELECT id, email FROM public.users" > users.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd.Context())
			if err != nil {
				return err
			}
			if projectID <= 0 {
				return errors.New("--project is required")
			}

			query := strings.Join(args, " ")
			result, err := rt.gateway().ExecuteQuery(cmd.Context(), projectID, query)
			if err != nil {
				return fmt.Errorf("%s: %w", session.NetworkErrorMessage, err)
			}
			return renderResult(cmd.OutOrStdout(), result, outputFormat)
		},
	}

	cmd.Flags().IntVarP(&projectID, "project", "p", 0, "project to query")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "table", "output format (table|csv|json)")
	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "csv", "json"}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

// renderResult prints a query result. Results without rows print their message.
func renderResult(w io.Writer, result *models.QueryResult, outputFormat string) error {
	switch {
	case result == nil:
		return errors.New("the server returned an unreadable result")
	case !result.HasRows() && result.Message != "":
		if result.RowsAffected == nil {
			return errors.New(result.Message)
		}
		_, _ = fmt.Fprintln(w, result.Message)
		return nil
	case !result.HasRows() && result.RowsAffected != nil:
		_, _ = fmt.Fprintf(w, "%d rows affected\n", *result.RowsAffected)
		return nil
	}

	switch outputFormat {
	case "json":
		return export.WriteJSON(w, result)
	case "csv":
		if !result.HasRows() {
			return nil
		}
		return export.WriteCSV(w, result)
	case "table", "":
		return renderTable(w, result)
	default:
		return fmt.Errorf("unknown format %q (want table, csv or json)", outputFormat)
	}
}

func renderTable(w io.Writer, result *models.QueryResult) error {
	columns, cells := format.Grid(result)
	if len(cells) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, line := range cells {
		row := make(table.Row, len(line))
		for i, cell := range line {
			row[i] = cell
		}
		t.AppendRow(row)
	}

	t.Render()
	if len(cells) == 1 {
		_, _ = fmt.Fprintln(w, "(1 row)")
	} else {
		_, _ = fmt.Fprintf(w, "(%d rows)\n", len(cells))
	}
	return nil
}
