// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestCanonicalKeyOrderInvariant pins the canonicalization against a fixed
// vector.
func TestCanonicalKeyOrderInvariant(t *testing.T) {
	a := map[string]interface{}{"b": 1, "a": 2, "c": []interface{}{3, 2, 1}}
	b := map[string]interface{}{"c": []interface{}{3, 2, 1}, "a": 2, "b": 1}

	ca, err := Canonical(a)
	require.NoError(t, err)
	cb, err := Canonical(b)
	require.NoError(t, err)

	require.Equal(t, ca, cb, "key order in the source map must not affect canonical output")
	require.Equal(t, `{"a":2,"b":1,"c":[3,2,1]}`, string(ca))
}

func TestCanonicalHashDeterministic(t *testing.T) {
	v := struct {
		Z string `json:"z"`
		A int    `json:"a"`
	}{Z: "zzz", A: 1}

	h1, err := CanonicalHash(v)
	require.NoError(t, err)
	h2, err := CanonicalHash(v)
	require.NoError(t, err)
	require.Equal(t, h1, h2)

	raw, err := Canonical(v)
	require.NoError(t, err)
	require.Equal(t, sha256.Sum256(raw), h1)
}
