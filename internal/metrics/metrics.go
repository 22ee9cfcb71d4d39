// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package metrics exposes blobfish server counters via a Prometheus
// registry. All counters are created eagerly so callers never need to
// nil-check or look one up by name.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds every counter the acceptor side updates during a session.
type Metrics struct {
	SessionsAccepted prometheus.Counter
	SessionsFailed   prometheus.Counter
	FilesReceived    prometheus.Counter
	PiecesReceived   prometheus.Counter
	BytesWritten     prometheus.Counter
	DedupHits        prometheus.Counter
	DedupMisses      prometheus.Counter
}

const namespace = "blobfish"

// New creates and registers a Metrics against reg. Passing a fresh
// prometheus.NewRegistry() is typical in tests; production code usually
// passes prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	counter := func(name, help string) prometheus.Counter {
		c := prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		})
		reg.MustRegister(c)
		return c
	}
	return &Metrics{
		SessionsAccepted: counter("sessions_accepted_total", "Sessions whose offer was accepted."),
		SessionsFailed:   counter("sessions_failed_total", "Sessions that ended in a protocol or I/O error."),
		FilesReceived:    counter("files_received_total", "Files fully received."),
		PiecesReceived:   counter("pieces_received_total", "Piece messages received."),
		BytesWritten:     counter("bytes_written_total", "Bytes written to the data directory."),
		DedupHits:        counter("dedup_hits_total", "Offers answered from the dedup cache without a transfer."),
		DedupMisses:      counter("dedup_misses_total", "Offers that required a transfer."),
	}
}

// Noop returns a Metrics registered against a private, discarded registry,
// for callers that want the interface without wiring a real one up.
func Noop() *Metrics {
	return New(prometheus.NewRegistry())
}
