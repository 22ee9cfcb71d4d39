// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config holds blobfish's small set of runtime settings. There is
// no file format to parse: every setting is a CLI flag or a built-in
// default, so this package is just defaults and validation, not a loader.
package config

import (
	"fmt"
	"net"
	"time"
)

// DefaultAddr is the address serve binds and upload dials when --connect-to
// is not given.
const DefaultAddr = "127.0.0.1:8080"

// DefaultDataDir is where an acceptor writes received packages.
const DefaultDataDir = "data"

// DefaultReadTimeout bounds how long a session may go without receiving a
// frame header before the framer gives up on it.
const DefaultReadTimeout = 2 * time.Minute

// Config is the resolved set of settings a server or client run needs.
type Config struct {
	Addr        string
	DataDir     string
	ReadTimeout time.Duration
}

// Default returns a Config with every field set to its default.
func Default() Config {
	return Config{Addr: DefaultAddr, DataDir: DefaultDataDir, ReadTimeout: DefaultReadTimeout}
}

// Validate reports the first problem with c, or nil.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("config: addr must not be empty")
	}
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return fmt.Errorf("config: addr %q: %w", c.Addr, err)
	}
	if c.DataDir == "" {
		return fmt.Errorf("config: data dir must not be empty")
	}
	if c.ReadTimeout < 0 {
		return fmt.Errorf("config: read timeout must not be negative")
	}
	return nil
}
