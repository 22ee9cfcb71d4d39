// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package server

import (
	"log/slog"
	"time"

	"code.hybscloud.com/blobfish/internal/metrics"
	"code.hybscloud.com/blobfish/internal/wire"
)

// AcceptFunc decides whether an acceptor wants a given offer at all, before
// dedup is even consulted. The default accepts everything.
type AcceptFunc func(wire.MyPkg) bool

// Options configures a Server.
type Options struct {
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
	Accept      AcceptFunc
	ReadTimeout time.Duration
	Peers       []string
}

var defaultOptions = Options{
	Logger:  slog.Default(),
	Metrics: metrics.Noop(),
	Accept:  func(wire.MyPkg) bool { return true },
}

// Option customizes a Server built by New.
type Option func(*Options)

// WithLogger sets the structured logger sessions report through.
func WithLogger(l *slog.Logger) Option { return func(o *Options) { o.Logger = l } }

// WithMetrics sets the counters sessions update.
func WithMetrics(m *metrics.Metrics) Option { return func(o *Options) { o.Metrics = m } }

// WithAccept sets the policy deciding whether to want an offered package.
func WithAccept(fn AcceptFunc) Option { return func(o *Options) { o.Accept = fn } }

// WithReadTimeout bounds per-frame read inactivity (see framer.WithReadDeadline).
func WithReadTimeout(d time.Duration) Option { return func(o *Options) { o.ReadTimeout = d } }

// WithPeers seeds the set of peer endpoints this acceptor offers back to an
// offerer during negotiation.
func WithPeers(peers []string) Option { return func(o *Options) { o.Peers = peers } }
