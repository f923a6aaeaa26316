package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"mentorai/tutor/config"
	"mentorai/tutor/export"
	"mentorai/tutor/types"
)

var (
	exportFormat    string
	exportOutputDir string
	exportSessionID string
	clearYes        bool
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage stored chats",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored chats, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), settings)
		if err != nil {
			return err
		}
		defer a.close()

		out := cmd.OutOrStdout()
		r := lipgloss.NewRenderer(out)
		header := r.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
		dim := r.NewStyle().Foreground(lipgloss.Color("243"))

		v := a.ctrl.View()
		if len(v.Sessions) == 0 {
			fmt.Fprintln(out, header.Render("No chats found"))
			return nil
		}

		fmt.Fprintln(out, header.Render(fmt.Sprintf("Found %d chat(s)", len(v.Sessions))))
		w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tTitle\tMessages\tCreated")
		for _, s := range v.Sessions {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", s.ID, s.Title, s.MessageCount, dim.Render(s.CreatedAt.Local().Format("2006-01-02 15:04")))
		}
		return w.Flush()
	},
}

var sessionsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export chats to files",
	Long: `Export every chat, or the one named by --session, as json, yaml or md.
Files are written to --output, one per chat.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, err := export.NewExporter(exportFormat)
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), settings)
		if err != nil {
			return err
		}
		defer a.close()

		var targets []types.ChatSession
		if exportSessionID != "" {
			s, ok := a.ctrl.Session(exportSessionID)
			if !ok {
				return fmt.Errorf("session not found: %s", exportSessionID)
			}
			targets = append(targets, s)
		} else {
			targets = a.repo.Sessions()
		}

		if err := os.MkdirAll(exportOutputDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		for _, s := range targets {
			path := filepath.Join(exportOutputDir, export.Filename(s, exporter))
			if err := writeExport(path, s, exporter); err != nil {
				return err
			}
			config.Logger.WithField("session_id", s.ID).Debug("Exported ", path)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d chat(s) to %s\n", len(targets), exportOutputDir)
		return nil
	},
}

func writeExport(path string, s types.ChatSession, e export.Exporter) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := e.Export(s, f); err != nil {
		f.Close()
		return fmt.Errorf("failed to export %s: %w", s.ID, err)
	}
	return f.Close()
}

var sessionsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every stored chat",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearYes {
			return fmt.Errorf("refusing to delete all chats without --yes")
		}
		a, err := newApp(cmd.Context(), settings)
		if err != nil {
			return err
		}
		defer a.close()

		a.ctrl.ClearAll(cmd.Context())
		printNotices(cmd, a)
		return nil
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete one chat",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), settings)
		if err != nil {
			return err
		}
		defer a.close()

		if !a.ctrl.DeleteSession(cmd.Context(), args[0]) {
			return fmt.Errorf("session not found: %s", args[0])
		}
		printNotices(cmd, a)
		return nil
	},
}

var sessionsRenameCmd = &cobra.Command{
	Use:   "rename <session-id> <title>",
	Short: "Rename a chat",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), settings)
		if err != nil {
			return err
		}
		defer a.close()

		if !a.ctrl.RenameSession(cmd.Context(), args[0], args[1]) {
			return fmt.Errorf("could not rename %s: unknown session or blank title", args[0])
		}
		s, _ := a.ctrl.Session(args[0])
		fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %q\n", s.ID, s.Title)
		return nil
	},
}

func printNotices(cmd *cobra.Command, a *app) {
	for _, n := range a.notices.Drain() {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", n.Title, n.Description)
	}
}

func init() {
	sessionsExportCmd.Flags().StringVarP(&exportFormat, "format", "f", "md", "Export format (json, yaml, md)")
	sessionsExportCmd.Flags().StringVarP(&exportOutputDir, "output", "o", "exports", "Output directory")
	sessionsExportCmd.Flags().StringVarP(&exportSessionID, "session", "s", "", "Export only this session")
	sessionsClearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "Confirm deletion")

	sessionsCmd.AddCommand(sessionsListCmd, sessionsExportCmd, sessionsClearCmd, sessionsDeleteCmd, sessionsRenameCmd)
	rootCmd.AddCommand(sessionsCmd)
}
