package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/timenexus/timenexus/pkg/session"
)

func (c *CLI) sessionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sessions",
		Aliases: []string{"session"},
		Short:   "Manage stored networks",
		Long: `Sessions keep named networks between runs. Commands producing a network store
it with --session; any command reads it back with "session:<id>/<name>".`,
	}
	cmd.AddCommand(c.sessionsListCommand())
	cmd.AddCommand(c.sessionsShowCommand())
	cmd.AddCommand(c.sessionsDeleteCommand())
	cmd.AddCommand(c.sessionsCleanupCommand())
	return cmd
}

func (c *CLI) sessionsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List live sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.openSessions(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			sessions, err := store.List(ctx)
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				printInfo("No sessions")
				return nil
			}
			fmt.Println(sessionsTable(sessions))
			return nil
		},
	}
}

func sessionsTable(sessions []*session.Session) string {
	rows := make([][]string, len(sessions))
	for i, s := range sessions {
		expires := "never"
		if !s.ExpiresAt.IsZero() {
			expires = s.ExpiresAt.Format(time.DateTime)
		}
		rows[i] = []string{s.ID, s.Name, strconv.Itoa(len(s.Graphs)), s.UpdatedAt.Format(time.DateTime), expires}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "Networks", "Updated", "Expires").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return base.Inherit(styleHeader)
			case col == 0:
				return base.Foreground(colorGray)
			case col == 2:
				return base.Foreground(colorCyan).Align(lipgloss.Right)
			}
			return base
		}).
		Render()
}

func (c *CLI) sessionsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show the networks of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.openSessions(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			sess, err := getSession(cmd, store, args[0])
			if err != nil {
				return err
			}
			printKeyValue("ID", sess.ID)
			printKeyValue("Name", sess.Name)
			printKeyValue("Created", sess.CreatedAt.Format(time.DateTime))
			fmt.Println()
			for _, name := range sess.Names() {
				col, err := sess.Collection(name)
				if err != nil {
					printWarning("%s: %v", name, err)
					continue
				}
				printCollection(col)
			}
			return nil
		},
	}
}

func (c *CLI) sessionsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id> [network]",
		Short: "Delete a session, or one network of it",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.openSessions(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if len(args) == 1 {
				if err := store.Delete(ctx, args[0]); err != nil {
					return err
				}
				printSuccess("Deleted session %s", args[0])
				return nil
			}

			sess, err := getSession(cmd, store, args[0])
			if err != nil {
				return err
			}
			if !sess.Remove(args[1]) {
				return fmt.Errorf("session %s, network %q: %w", args[0], args[1], session.ErrNotFound)
			}
			if err := store.Set(ctx, sess); err != nil {
				return err
			}
			printSuccess("Deleted %s from session %s", StyleHighlight.Render(args[1]), args[0])
			return nil
		},
	}
}

func (c *CLI) sessionsCleanupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Remove expired sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.openSessions(ctx)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Cleanup(ctx); err != nil {
				return err
			}
			printSuccess("Removed expired sessions")
			return nil
		},
	}
}

func getSession(cmd *cobra.Command, store session.Store, id string) (*session.Session, error) {
	sess, err := store.Get(cmd.Context(), id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("session %s: %w", id, session.ErrNotFound)
	}
	return sess, nil
}
