// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package server

import "testing"

func TestDedupCache(t *testing.T) {
	c := NewDedupCache()
	if c.Has("abc") {
		t.Fatal("Has reported true before Insert")
	}
	c.Insert("abc")
	if !c.Has("abc") {
		t.Fatal("Has reported false after Insert")
	}
	if c.Has("xyz") {
		t.Fatal("Has reported true for a digest never inserted")
	}
}
