// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/spf13/cobra"

	"code.hybscloud.com/blobfish/internal/blob"
	"code.hybscloud.com/blobfish/internal/blockio"
	"code.hybscloud.com/blobfish/internal/session"
)

func newUploadCmd() *cobra.Command {
	var author, commit string
	var tags, peers []string
	var ackEvery uint64

	cmd := &cobra.Command{
		Use:   "upload NAME FILE [FILE...]",
		Short: "Offer a named package of one or more files to a listening peer",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, paths := args[0], args[1:]

			pkg, err := blob.NewPackage(name, paths,
				blob.WithAuthor(author), blob.WithCommit(commit), blob.WithTags(tags...))
			if err != nil {
				return fmt.Errorf("hash package: %w", err)
			}
			pkg.BuiltOn = time.Now().UnixMilli()

			conn, err := net.Dial("tcp", connectTo)
			if err != nil {
				return fmt.Errorf("dial %s: %w", connectTo, err)
			}
			defer conn.Close()

			outcome, err := session.NewOfferer(conn).Offer(pkg)
			if err != nil {
				return fmt.Errorf("offer: %w", err)
			}
			switch o := outcome.(type) {
			case session.Rejected:
				slog.Info("peer declined the package", "package", pkg.Name)
				return nil
			case session.Deduped:
				slog.Info("peer already has this package", "package", pkg.Name, "digest", pkg.MD5Sum)
				return nil
			case *session.Accepting:
				o.AddPeers(peers)
				exchanging, err := o.Negotiate()
				if err != nil {
					return fmt.Errorf("negotiate: %w", err)
				}
				if err := exchanging.SendFiles(blockio.Open, ackEvery); err != nil {
					return fmt.Errorf("send files: %w", err)
				}
				slog.Info("transfer complete", "package", pkg.Name, "files", len(pkg.Files), "peers", exchanging.Peers())
				return nil
			default:
				return fmt.Errorf("unexpected offer outcome %T", outcome)
			}
		},
	}
	cmd.Flags().StringVar(&author, "author", "", "package author")
	cmd.Flags().StringVar(&commit, "commit", "", "commit or build identifier to embed in the offer")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tag to attach to the package (repeatable)")
	cmd.Flags().Uint64Var(&ackEvery, "ack-every", 64, "request a piece ack every N pieces (0 disables mid-stream acks)")
	cmd.Flags().StringSliceVar(&peers, "peers", nil, "peer endpoints already known to this offerer (repeatable)")
	return cmd
}
