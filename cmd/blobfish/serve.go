// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"code.hybscloud.com/blobfish/internal/blockio"
	"code.hybscloud.com/blobfish/internal/config"
	"code.hybscloud.com/blobfish/internal/metrics"
	"code.hybscloud.com/blobfish/internal/server"
)

func newServeCmd() *cobra.Command {
	var peers []string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Accept incoming package offers and write them under the data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Config{Addr: connectTo, DataDir: dataDir, ReadTimeout: config.DefaultReadTimeout}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			store := blockio.New(cfg.DataDir)
			m := metrics.New(prometheus.DefaultRegisterer)
			srv := server.New(cfg.Addr, store,
				server.WithLogger(slog.Default()),
				server.WithMetrics(m),
				server.WithReadTimeout(cfg.ReadTimeout),
				server.WithPeers(peers),
			)

			slog.Info("serving", "addr", cfg.Addr, "data_dir", cfg.DataDir)
			if err := srv.Serve(ctx); err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&peers, "peers", nil, "peer endpoints to offer back to offerers during negotiation")
	return cmd
}
