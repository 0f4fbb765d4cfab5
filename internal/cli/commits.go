package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rebeliceyang/lazybrowse/internal/models"
	"github.com/rebeliceyang/lazybrowse/internal/session"
	"github.com/spf13/cobra"
)

func newCommitsCommand() *cobra.Command {
	var (
		projectID int
		offset    int
		limit     int
		show      string
	)

	cmd := &cobra.Command{
		Use:   "commits",
		Short: "List a project's schema commit history, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd.Context())
			if err != nil {
				return err
			}
			if projectID <= 0 {
				return errors.New("--project is required")
			}
			if offset < 0 || limit <= 0 {
				return errors.New("--offset must be >= 0 and --limit > 0")
			}

			page, err := rt.gateway().FetchCommits(cmd.Context(), projectID, offset, limit)
			if err != nil {
				return fmt.Errorf("failed to fetch commits: %w", err)
			}

			w := cmd.OutOrStdout()
			if show == "" {
				renderCommits(w, page, offset)
				return nil
			}

			for _, c := range page.Commits {
				if c.Key() == show || c.Checksum == show {
					renderCommit(w, c)
					return nil
				}
			}
			return fmt.Errorf("commit %s not found in this page", show)
		},
	}

	cmd.Flags().IntVarP(&projectID, "project", "p", 0, "project whose history to list")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of newest commits to skip")
	cmd.Flags().IntVar(&limit, "limit", session.CommitPageSize, "page size")
	cmd.Flags().StringVar(&show, "show", "", "print the details and scripts of one commit (id or checksum)")
	return cmd
}

func renderCommits(w io.Writer, page *models.CommitPage, offset int) {
	if len(page.Commits) == 0 {
		_, _ = fmt.Fprintf(w, "(0 of %d commits)\n", page.TotalCount)
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Checksum", "Action", "Created", "Title"})
	for _, c := range page.Commits {
		checksum := c.Checksum
		if len(checksum) > 8 {
			checksum = checksum[:8]
		}
		title := c.Title
		if c.IsDeleted() {
			title += " (deleted)"
		}
		t.AppendRow(table.Row{c.Key(), checksum, c.ActionType, c.CreatedAt.Local().Format("2006-01-02 15:04"), title})
	}
	t.Render()

	_, _ = fmt.Fprintf(w, "(%d-%d of %d commits)\n", offset+1, offset+len(page.Commits), page.TotalCount)
}

func renderCommit(w io.Writer, c models.Commit) {
	parent := "none"
	if c.ParentChecksum != nil {
		parent = *c.ParentChecksum
	}

	_, _ = fmt.Fprintf(w, "commit   %s\n", c.Key())
	_, _ = fmt.Fprintf(w, "checksum %s\n", c.Checksum)
	_, _ = fmt.Fprintf(w, "parent   %s\n", parent)
	_, _ = fmt.Fprintf(w, "action   %s\n", c.ActionType)
	_, _ = fmt.Fprintf(w, "created  %s\n", c.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	_, _ = fmt.Fprintf(w, "\n    %s\n", c.Title)
	if c.Message != "" {
		_, _ = fmt.Fprintf(w, "\n    %s\n", c.Message)
	}
	_, _ = fmt.Fprintf(w, "\n-- up\n%s\n", c.UpScript)
	if c.DownScript != "" {
		_, _ = fmt.Fprintf(w, "\n-- down\n%s\n", c.DownScript)
	}
}
