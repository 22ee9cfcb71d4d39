// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package server

import (
	"context"
	"errors"
	"fmt"
	"net"

	"golang.org/x/sync/errgroup"

	"code.hybscloud.com/blobfish/internal/blockio"
	"code.hybscloud.com/blobfish/internal/session"
	"code.hybscloud.com/blobfish/internal/wire"
	"code.hybscloud.com/blobfish/framer"
)

// Server accepts blobfish connections and drives one session per peer.
type Server struct {
	addr  string
	store *blockio.Store
	dedup *DedupCache
	opts  Options
}

// New returns a Server bound to addr that writes received packages under
// store.
func New(addr string, store *blockio.Store, opts ...Option) *Server {
	o := defaultOptions
	for _, fn := range opts {
		fn(&o)
	}
	return &Server{addr: addr, store: store, dedup: NewDedupCache(), opts: o}
}

// Serve listens on s.addr and runs the accept loop until ctx is canceled or
// an unrecoverable listener error occurs. Each connection is handled in its
// own goroutine, tracked by an errgroup so Serve returns only after every
// in-flight session has finished; a session's own error never aborts the
// others or the loop.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.addr, err)
	}
	s.opts.Logger.Info("listening", "addr", ln.Addr().String())

	stopped := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = ln.Close()
		case <-stopped:
		}
	}()
	defer close(stopped)

	g, _ := errgroup.WithContext(context.Background())
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			var ne net.Error
			if errors.As(err, &ne) && !ne.Timeout() {
				break
			}
			s.opts.Logger.Warn("accept", "err", err)
			continue
		}
		g.Go(func() error {
			defer conn.Close()
			s.handle(ctx, conn)
			return nil
		})
	}
	return g.Wait()
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	remote := conn.RemoteAddr().String()
	fopts := []framer.Option{framer.WithValidTypes(wire.IsValidType)}
	if s.opts.ReadTimeout > 0 {
		fopts = append(fopts, framer.WithReadDeadline(s.opts.ReadTimeout))
	}

	offered, err := session.ReceiveOffer(conn, fopts...)
	if err != nil {
		s.opts.Logger.Warn("receive offer", "remote", remote, "err", err)
		s.opts.Metrics.SessionsFailed.Inc()
		return
	}
	pkg := offered.Package()
	log := s.opts.Logger.With("remote", remote, "package", pkg.Name, "digest", pkg.MD5Sum)

	if !s.opts.Accept(pkg) {
		if err := offered.Reject(); err != nil {
			log.Warn("reject", "err", err)
		}
		return
	}
	if s.dedup.Has(pkg.MD5Sum) || s.store.Exists(pkg.MD5Sum) {
		s.opts.Metrics.DedupHits.Inc()
		if err := offered.Dedup(); err != nil {
			log.Warn("dedup ack", "err", err)
			s.opts.Metrics.SessionsFailed.Inc()
		}
		return
	}
	s.opts.Metrics.DedupMisses.Inc()
	// Recorded as seen before the transfer even starts, not after it
	// finishes, so a second concurrent offer of the same package is
	// deduped rather than racing this one to disk.
	s.dedup.Insert(pkg.MD5Sum)

	negotiating, err := offered.Accept()
	if err != nil {
		log.Warn("accept", "err", err)
		s.opts.Metrics.SessionsFailed.Inc()
		return
	}
	s.opts.Metrics.SessionsAccepted.Inc()

	negotiating.AddPeers(s.opts.Peers)
	exchanging, err := negotiating.Negotiate()
	if err != nil {
		log.Warn("negotiate", "err", err)
		s.opts.Metrics.SessionsFailed.Inc()
		return
	}

	for i, n := 0, exchanging.FileCount(); i < n; i++ {
		if ctx.Err() != nil {
			log.Info("shutting down mid-transfer")
			return
		}
		if err := exchanging.ReceiveFile(s.store, s.opts.Metrics); err != nil {
			log.Warn("receive file", "index", i, "err", err)
			s.opts.Metrics.SessionsFailed.Inc()
			return
		}
		s.opts.Metrics.FilesReceived.Inc()
	}
	log.Info("transfer complete", "files", exchanging.FileCount())
}
