package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"campusmarket/internal/app/messaging"
	"campusmarket/internal/domain/shared/ids"
	"campusmarket/internal/render"
)

func newChatCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "chat <listing-id> [message...]",
		Short: "Show or continue the conversation with a listing's seller",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(open, func(a *app) error {
				id, err := ids.Parse(args[0])
				if err != nil {
					return err
				}
				if _, ok := a.session.Current(); !ok {
					return userMessage(messaging.ErrNoSession)
				}
				a.catalog.Load(cmd.Context())
				item, err := a.catalog.Find(id)
				if err != nil {
					return err
				}

				m := a.messenger(messaging.Options{})
				state, err := m.OpenListingChat(cmd.Context(), item)
				if err != nil && !state.Open() {
					return userMessage(err)
				}
				if text := strings.Join(args[1:], " "); strings.TrimSpace(text) != "" {
					if _, err := m.Send(cmd.Context(), text); err != nil {
						a.println(render.Thread(m.Thread.State(), a.self(), nil))
						return fmt.Errorf("Failed to send: %s", userMessage(err))
					}
				}
				a.println(render.Thread(m.Thread.State(), a.self(), nil))
				return userMessage(m.Thread.State().Err)
			})
		},
	}
}

func newInboxCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "List conversations with unread counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(open, func(a *app) error {
				if _, ok := a.session.Current(); !ok {
					return userMessage(messaging.ErrNoSession)
				}
				m := a.messenger(messaging.Options{})
				state, err := m.RefreshInbox(cmd.Context())
				a.println(render.Inbox(state, nil))
				if err != nil {
					return userMessage(err)
				}
				return nil
			})
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "open <n>",
		Short: "Open the n-th conversation and mark it read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(open, func(a *app) error {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("invalid row %q", args[0])
				}
				if _, ok := a.session.Current(); !ok {
					return userMessage(messaging.ErrNoSession)
				}
				m := a.messenger(messaging.Options{})
				inbox, err := m.RefreshInbox(cmd.Context())
				if err != nil {
					return userMessage(err)
				}
				if n > len(inbox.Entries) {
					return fmt.Errorf("inbox has %d conversations", len(inbox.Entries))
				}
				state, err := m.OpenInboxEntry(cmd.Context(), inbox.Entries[n-1])
				if err != nil && !state.Open() {
					return userMessage(err)
				}
				a.println(render.Thread(state, a.self(), nil))
				return userMessage(err)
			})
		},
	})
	return cmd
}

func (a *app) self() ids.ID {
	current, _ := a.session.Current()
	return current.ID
}
