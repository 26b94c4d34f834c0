// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ava-labs/linkdrop/state"
)

func newKeyCmd(s *simulator) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage named ed25519 keys",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.closing(cmd.Help)
		},
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "create [name]",
			Short: "Creates a new named private key and stores it in the database",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return s.closing(func() error {
					pk, err := keyCreateFunc(cmd.Context(), s.db, args[0])
					if err != nil {
						return err
					}
					s.log.Debug("key create successful",
						zap.String("name", args[0]),
						zap.Stringer("key", pk),
					)
					_, err = fmt.Fprintln(cmd.OutOrStdout(), pk)
					return err
				})
			},
		},
		&cobra.Command{
			Use:   "show [name]",
			Short: "Prints the public key stored under a name",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return s.closing(func() error {
					pk, ok, err := GetPublicKey(cmd.Context(), state.NewSimpleMutable(s.db), args[0])
					if err != nil {
						return err
					}
					if !ok {
						return fmt.Errorf("%w: %s", ErrNamedKeyNotFound, args[0])
					}
					_, err = fmt.Fprintln(cmd.OutOrStdout(), pk)
					return err
				})
			},
		},
	)
	return cmd
}
