// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import "testing"

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestValidateRejectsBadAddr(t *testing.T) {
	cfg := Default()
	cfg.Addr = "not-a-valid-address"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for a malformed address")
	}
}

func TestValidateRejectsEmptyDataDir(t *testing.T) {
	cfg := Default()
	cfg.DataDir = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for an empty data dir")
	}
}

func TestValidateRejectsNegativeTimeout(t *testing.T) {
	cfg := Default()
	cfg.ReadTimeout = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for a negative read timeout")
	}
}
