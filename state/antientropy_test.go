// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/luxfi/log"
	"github.com/stretchr/testify/require"
)

type fakeEncoder struct {
	deltaCalls int32
	fullCalls  int32
}

func (f *fakeEncoder) EncodeDelta() ([]byte, error) {
	atomic.AddInt32(&f.deltaCalls, 1)
	return []byte("delta"), nil
}

func (f *fakeEncoder) EncodeFullState() ([]byte, error) {
	atomic.AddInt32(&f.fullCalls, 1)
	return []byte("full"), nil
}

type fakeExchanger struct {
	deltaPublishes int32
	fullPublishes  int32
}

func (f *fakeExchanger) PublishDelta([]byte) error {
	atomic.AddInt32(&f.deltaPublishes, 1)
	return nil
}

func (f *fakeExchanger) PublishFullState([]byte) error {
	atomic.AddInt32(&f.fullPublishes, 1)
	return nil
}

func TestAntiEntropyFiresBothTickers(t *testing.T) {
	enc := &fakeEncoder{}
	ex := &fakeExchanger{}
	ae := NewAntiEntropy(log.NewNoOpLogger(), enc, ex, 5*time.Millisecond, 12*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()
	ae.Run(ctx)

	require.True(t, atomic.LoadInt32(&enc.deltaCalls) >= 3)
	require.True(t, atomic.LoadInt32(&enc.fullCalls) >= 2)
	require.Equal(t, atomic.LoadInt32(&enc.deltaCalls), atomic.LoadInt32(&ex.deltaPublishes))
	require.Equal(t, atomic.LoadInt32(&enc.fullCalls), atomic.LoadInt32(&ex.fullPublishes))
}

func TestAntiEntropyDefaultsIntervals(t *testing.T) {
	ae := NewAntiEntropy(log.NewNoOpLogger(), &fakeEncoder{}, &fakeExchanger{}, 0, 0)
	require.Equal(t, 10*time.Second, ae.deltaEvery)
	require.Equal(t, 60*time.Second, ae.fullEvery)
}
