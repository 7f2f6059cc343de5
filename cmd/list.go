package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/zjrosen/signup/internal/api"
	"github.com/zjrosen/signup/internal/registration"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the tenant's registrations",
	Long: `Fetch every registration of the configured tenant and print them as a
table. Exits non-zero with the HTTP status text when the resource answers
with an error.

Examples:
  signup list
  signup list --tenant 5e8c6579e61fbd00164aebec
  SIGNUP_BASE_URL='http://127.0.0.1:8080/{tenant}' signup list`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	client, shutdown, err := newAPIClient(cfg)
	if err != nil {
		return err
	}
	defer shutdown()

	regs, err := client.List(cmd.Context(), cfg.Tenant)
	if err != nil {
		var reqErr *api.RequestError
		if errors.As(err, &reqErr) {
			return fmt.Errorf("listing registrations: %s", reqErr.StatusText)
		}
		return fmt.Errorf("listing registrations: %w", err)
	}
	return writeRegistrations(cmd.OutOrStdout(), regs)
}

// writeRegistrations prints regs with the same columns as the TUI table.
func writeRegistrations(w io.Writer, regs []registration.Registration) error {
	if len(regs) == 0 {
		_, err := fmt.Fprintln(w, "No registrations")
		return err
	}

	rows := make([][]string, 0, len(regs))
	for _, r := range regs {
		rows = append(rows, []string{r.ID, r.Username, r.Email, r.Phone, r.Newsletter.Cell(), r.Text})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "Username", "Email", "Phone", "Newsletter", "Text").
		Rows(rows...)

	_, err := fmt.Fprintln(w, t.Render())
	return err
}
