// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newDownloadCmd reserves the download subcommand. It takes one or more file
// arguments and always fails with a not-implemented error; the protocol has
// no message for requesting files from a peer.
func newDownloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "download FILE [FILE...]",
		Short:  "Not yet implemented",
		Args:   cobra.MinimumNArgs(1),
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("download: not implemented")
		},
	}
}

// newListCmd is a placeholder for listing packages held locally; the
// acceptor currently exposes no query surface over the wire protocol.
func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "list",
		Short:  "Not yet implemented",
		Args:   cobra.NoArgs,
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("list: not implemented")
		},
	}
}
