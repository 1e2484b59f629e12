package notes

import (
	"fmt"
	"strconv"

	"github.com/crucial707/notes-api/cmd/cli/config"
	"github.com/crucial707/notes-api/cmd/cli/output"
	"github.com/crucial707/notes-api/internal/client"
	"github.com/crucial707/notes-api/internal/models"
	"github.com/spf13/cobra"
)

const timeLayout = "2006-01-02 15:04"

// ==========================
// Init Notes
// ==========================
func InitNotes(rootCmd *cobra.Command) {
	rootCmd.AddCommand(
		listNotesCmd(),
		showNoteCmd(),
		createNoteCmd(),
		editNoteCmd(),
		deleteNoteCmd(),
	)
}

// ==========================
// List
// ==========================
func listNotesCmd() *cobra.Command {
	var query string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your notes, most recently updated first",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Client()
			if err != nil {
				return err
			}
			list, err := c.ListNotes(cmd.Context(), query)
			if err != nil {
				return err
			}

			if asJSON {
				return output.PrintJSON(cmd.OutOrStdout(), list)
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No notes.")
				return nil
			}
			rows := make([][]interface{}, 0, len(list))
			for _, n := range list {
				rows = append(rows, []interface{}{n.ID, output.Truncate(n.Title, 40), n.Tags, n.UpdatedAt.Local().Format(timeLayout)})
			}
			output.RenderTable(cmd.OutOrStdout(), []string{"ID", "Title", "Tags", "Updated"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Only notes whose title, content or tags contain this text")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print raw JSON")
	return cmd
}

// ==========================
// Show
// ==========================
func showNoteCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show one note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := config.Client()
			if err != nil {
				return err
			}
			n, err := c.GetNote(cmd.Context(), id)
			if err != nil {
				return err
			}
			if asJSON {
				return output.PrintJSON(cmd.OutOrStdout(), n)
			}
			printNote(cmd, n)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print raw JSON")
	return cmd
}

// ==========================
// Create
// ==========================
func createNoteCmd() *cobra.Command {
	var in client.NoteInput

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a note",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Client()
			if err != nil {
				return err
			}
			n, err := c.CreateNote(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created note %d.\n", n.ID)
			return nil
		},
	}

	noteFlags(cmd, &in)
	return cmd
}

// ==========================
// Edit
// ==========================
func editNoteCmd() *cobra.Command {
	var in client.NoteInput

	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Replace a note's title, content and tags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := config.Client()
			if err != nil {
				return err
			}
			n, err := c.UpdateNote(cmd.Context(), id, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated note %d.\n", n.ID)
			return nil
		},
	}

	noteFlags(cmd, &in)
	return cmd
}

// ==========================
// Delete
// ==========================
func deleteNoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := config.Client()
			if err != nil {
				return err
			}
			if err := c.DeleteNote(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted note %d.\n", id)
			return nil
		},
	}
}

func noteFlags(cmd *cobra.Command, in *client.NoteInput) {
	cmd.Flags().StringVar(&in.Title, "title", "", "note title")
	cmd.Flags().StringVar(&in.Content, "content", "", "note content")
	cmd.Flags().StringVar(&in.Tags, "tags", "", "comma-separated tags")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("content")
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid note id %q", s)
	}
	return id, nil
}

func printNote(cmd *cobra.Command, n *models.Note) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "#%d %s\n", n.ID, n.Title)
	if n.Tags != "" {
		fmt.Fprintf(w, "Tags:    %s\n", n.Tags)
	}
	fmt.Fprintf(w, "Created: %s\n", n.CreatedAt.Local().Format(timeLayout))
	fmt.Fprintf(w, "Updated: %s\n\n", n.UpdatedAt.Local().Format(timeLayout))
	fmt.Fprintln(w, n.Content)
}
