// Package sessions exposes the session store to scripts without opening the
// chat view.
package sessions

import (
	"github.com/spf13/cobra"

	"gemchat/internal/chat"
	"gemchat/internal/cli"
)

// NewCmd instantiates and returns the sessions command group.
func NewCmd(store *chat.Store) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage chat sessions",
	}
	cmd.AddCommand(newListCmd(store))
	cmd.AddCommand(newCreateCmd(store))
	cmd.AddCommand(newRenameCmd(store))
	cmd.AddCommand(newDeleteCmd(store))
	cmd.AddCommand(newClearCmd(store))
	return cmd
}

// newListCmd instantiates and returns the session list command.
func newListCmd(store *chat.Store) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all sessions",
		Args:  cobra.ExactArgs(0),
		Run: func(cmd *cobra.Command, args []string) {
			cli.Title("GEMCHAT SESSIONS")

			currentID := store.CurrentSessionID()
			for _, session := range store.Sessions() {
				marker := " "
				if session.ID == currentID {
					marker = "*"
				}
				cli.BotMessage("%s %s (%s) - %d messages, last active %s\n",
					marker, session.Name, session.ID, len(session.Messages),
					session.LastActivity.Format("2006-01-02 15:04"))
			}
		},
	}
}

// newCreateCmd instantiates and returns the session create command.
func newCreateCmd(store *chat.Store) *cobra.Command {
	var opts struct {
		Activate bool
	}
	cmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Create a session",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			id := store.CreateSession(name, opts.Activate)
			session, _ := store.Session(id)
			cli.StatusInfo("created session %s (%s)\n", session.Name, id)
		},
	}
	cmd.Flags().BoolVarP(&opts.Activate, "activate", "a", true, "Make the new session active")
	return cmd
}

// newRenameCmd instantiates and returns the session rename command.
func newRenameCmd(store *chat.Store) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a session",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			id, name := args[0], args[1]
			if _, ok := store.Session(id); !ok {
				cli.ErrorInfo("no session with id %s\n", id)
				return
			}
			store.RenameSession(id, name)
			session, _ := store.Session(id)
			cli.StatusInfo("renamed session %s to %s\n", id, session.Name)
		},
	}
}

// newDeleteCmd instantiates and returns the session delete command.
func newDeleteCmd(store *chat.Store) *cobra.Command {
	var opts struct {
		Force bool
	}
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a session",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id := args[0]
			session, ok := store.Session(id)
			if !ok {
				cli.ErrorInfo("no session with id %s\n", id)
				return
			}
			if !opts.Force && !cli.QueryUser("Delete session "+session.Name+"?") {
				return
			}
			store.DeleteSession(id)
			cli.StatusInfo("deleted session %s\n", id)
		},
	}
	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "Skip the confirmation prompt")
	return cmd
}

// newClearCmd instantiates and returns the session clear command.
func newClearCmd(store *chat.Store) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <id>",
		Short: "Clear a session's messages",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id := args[0]
			if _, ok := store.Session(id); !ok {
				cli.ErrorInfo("no session with id %s\n", id)
				return
			}
			store.ClearSession(id)
			cli.StatusInfo("cleared session %s\n", id)
		},
	}
}
