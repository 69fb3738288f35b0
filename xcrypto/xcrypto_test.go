// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package xcrypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExpand_Deterministic(t *testing.T) {
	require := require.New(t)

	key, err := RandomKey()
	require.NoError(err)

	a, err := Expand(key)
	require.NoError(err)
	b, err := Expand(key)
	require.NoError(err)
	require.Equal(a, b)
}

func TestExpand_HalvesDiffer(t *testing.T) {
	require := require.New(t)

	key, err := RandomKey()
	require.NoError(err)

	out, err := Expand(key)
	require.NoError(err)
	require.NotEqual(out[:KeySize], out[KeySize:])
}

func TestPrf_EvalDeterministic(t *testing.T) {
	require := require.New(t)

	key, err := RandomKey()
	require.NoError(err)
	prf := NewPrf(key)

	a, err := prf.Eval([]byte("keyword"), 16)
	require.NoError(err)
	b, err := prf.Eval([]byte("keyword"), 16)
	require.NoError(err)
	require.Equal(a, b)

	c, err := prf.Eval([]byte("other"), 16)
	require.NoError(err)
	require.NotEqual(a, c)
}

func TestHash_Deterministic(t *testing.T) {
	require := require.New(t)

	a := Hash([]byte("a"), []byte("b"))
	b := Hash([]byte("a"), []byte("b"))
	require.Equal(a, b)

	c := Hash([]byte("ab"))
	require.NotEqual(a, c)
}

func TestXorPage_RoundTrip(t *testing.T) {
	require := require.New(t)

	key, err := RandomKey()
	require.NoError(err)

	original := []byte("the quick brown fox jumps over the lazy dog")
	buf := append([]byte(nil), original...)

	require.NoError(XorPage(key, 7, buf))
	require.NotEqual(original, buf)

	require.NoError(XorPage(key, 7, buf))
	require.Equal(original, buf)
}

func TestXorPage_DistinctPageIndicesDiffer(t *testing.T) {
	require := require.New(t)

	key, err := RandomKey()
	require.NoError(err)

	buf1 := []byte("0123456789abcdef")
	buf2 := append([]byte(nil), buf1...)

	require.NoError(XorPage(key, 0, buf1))
	require.NoError(XorPage(key, 1, buf2))
	require.NotEqual(buf1, buf2)
}

func TestKey_Equal(t *testing.T) {
	require := require.New(t)

	k1, err := RandomKey()
	require.NoError(err)
	k2 := k1

	require.True(k1.Equal(k2))

	k3, err := RandomKey()
	require.NoError(err)
	require.False(k1.Equal(k3))
}
