// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"code.hybscloud.com/blobfish/internal/config"
)

var (
	connectTo string
	dataDir   string
	verbose   bool
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "blobfish",
		Short:         "Offer and accept files over a direct TCP connection",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().StringVar(&connectTo, "connect-to", config.DefaultAddr, "address to dial or bind")
	root.PersistentFlags().StringVar(&dataDir, "data-dir", config.DefaultDataDir, "directory received packages are written under")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newUploadCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newDownloadCmd())
	root.AddCommand(newListCmd())
	return root
}
