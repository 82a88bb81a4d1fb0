package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStoreCmd() *cobra.Command {
	store := &cobra.Command{
		Use:   "store",
		Short: "Inspect or reset the persisted lists",
	}

	inspect := &cobra.Command{
		Use:   "inspect [namespace]",
		Short: "Print the stored document of a namespace, or list namespaces with --keys",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			if keys, _ := cmd.Flags().GetBool("keys"); keys {
				names, err := s.app.Sessions().List(cmd.Context())
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(out, name)
				}
				return nil
			}

			namespace := s.cfg.Namespace
			if len(args) == 1 {
				namespace = args[0]
			}
			raw, err := s.app.Sessions().Storage(namespace).Raw(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(raw))
			return nil
		},
	}
	inspect.Flags().Bool("keys", false, "List stored namespaces instead")

	reset := &cobra.Command{
		Use:   "reset [namespace]",
		Short: "Delete the stored list of a namespace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			namespace := s.cfg.Namespace
			if len(args) == 1 {
				namespace = args[0]
			}
			if err := s.app.Sessions().Reset(cmd.Context(), namespace); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reset %s\n", namespace)
			return nil
		},
	}

	store.AddCommand(inspect, reset)
	return store
}
