package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/todomvc"
	"github.com/aretw0/todomvc/pkg/domain"
	"github.com/aretw0/todomvc/pkg/ports"
	"github.com/spf13/cobra"
)

// newTaskCmds returns the one-shot list commands.
func newTaskCmds() []*cobra.Command {
	ls := &cobra.Command{
		Use:     "ls [all|active|completed]",
		Aliases: []string{"list"},
		Short:   "Show the list",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			state, err := current(cmd, s)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				filter, ok := domain.ParseFilter(args[0])
				if !ok {
					return fmt.Errorf("unknown filter %q", args[0])
				}
				state.Filter = filter
			}
			return printList(cmd.OutOrStdout(), state)
		},
	}

	add := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: mutate(func(cmd *cobra.Command, app *todomvc.App, _ *domain.State, args []string) (*ports.Snapshot, error) {
			return app.Add(cmd.Context(), strings.Join(args, " "))
		}),
	}

	toggle := &cobra.Command{
		Use:   "toggle <n|id>",
		Short: "Flip the completion of a task",
		Args:  cobra.ExactArgs(1),
		RunE: mutate(func(cmd *cobra.Command, app *todomvc.App, state *domain.State, args []string) (*ports.Snapshot, error) {
			id, err := resolve(state, args[0])
			if err != nil {
				return nil, err
			}
			return app.Toggle(cmd.Context(), id)
		}),
	}

	edit := &cobra.Command{
		Use:   "edit <n|id> <title>",
		Short: "Rename a task (an empty title deletes it)",
		Args:  cobra.MinimumNArgs(1),
		RunE: mutate(func(cmd *cobra.Command, app *todomvc.App, state *domain.State, args []string) (*ports.Snapshot, error) {
			id, err := resolve(state, args[0])
			if err != nil {
				return nil, err
			}
			return app.Update(cmd.Context(), id, strings.Join(args[1:], " "))
		}),
	}

	rm := &cobra.Command{
		Use:     "rm <n|id>",
		Aliases: []string{"remove"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: mutate(func(cmd *cobra.Command, app *todomvc.App, state *domain.State, args []string) (*ports.Snapshot, error) {
			id, err := resolve(state, args[0])
			if err != nil {
				return nil, err
			}
			return app.Remove(cmd.Context(), id)
		}),
	}

	toggleAll := &cobra.Command{
		Use:   "toggle-all",
		Short: "Complete every task",
		Args:  cobra.NoArgs,
		RunE: mutate(func(cmd *cobra.Command, app *todomvc.App, _ *domain.State, _ []string) (*ports.Snapshot, error) {
			off, _ := cmd.Flags().GetBool("off")
			return app.ToggleAll(cmd.Context(), !off)
		}),
	}
	toggleAll.Flags().Bool("off", false, "Reopen every task instead")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete completed tasks",
		Args:  cobra.NoArgs,
		RunE: mutate(func(cmd *cobra.Command, app *todomvc.App, _ *domain.State, _ []string) (*ports.Snapshot, error) {
			return app.ClearCompleted(cmd.Context())
		}),
	}

	return []*cobra.Command{ls, add, toggle, edit, rm, toggleAll, clearCmd}
}

type mutation func(cmd *cobra.Command, app *todomvc.App, state *domain.State, args []string) (*ports.Snapshot, error)

// mutate opens a session, applies fn and prints the whole list.
func mutate(fn mutation) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		state, err := current(cmd, s)
		if err != nil {
			return err
		}
		snap, err := fn(cmd, s.app, state, args)
		if err != nil {
			return err
		}
		if snap.Outcome.Miss {
			return fmt.Errorf("%w: %s", domain.ErrTaskNotFound, strings.Join(args, " "))
		}
		return printList(cmd.OutOrStdout(), snap.State)
	}
}

func current(cmd *cobra.Command, s *session) (*domain.State, error) {
	snap, err := s.app.Current(cmd.Context())
	if err != nil {
		return nil, err
	}
	return snap.State, nil
}

// resolve maps a list number or id prefix to a task id.
func resolve(state *domain.State, ref string) (string, error) {
	if strings.TrimSpace(ref) == "" {
		return "", fmt.Errorf("%w: empty reference", domain.ErrTaskNotFound)
	}
	return todomvc.ResolveRef(state, ref), nil
}
