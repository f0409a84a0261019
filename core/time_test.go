// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/devblok/koruboot/core"
)

func TestEventTickerTicks(t *testing.T) {
	c := qt.New(t)
	ts := core.NewTime(core.TimeConfiguration{EventPollDelay: 1})
	defer ts.Stop()

	c.Assert(ts.EventPollDelay(), qt.Equals, 1)
	select {
	case <-ts.EventTicker().C:
	case <-time.After(time.Second):
		c.Fatal("event ticker did not tick")
	}
}

func TestEventTickerZeroDelay(t *testing.T) {
	ts := core.NewTime(core.TimeConfiguration{})
	defer ts.Stop()

	select {
	case <-ts.EventTicker().C:
	case <-time.After(time.Second):
		t.Fatal("event ticker did not tick")
	}
}
