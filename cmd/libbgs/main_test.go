package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPrime(t *testing.T) {
	for _, p := range []uint64{3, 5, 7, 4001, 2305843009213693951} {
		assert.True(t, isPrime(p), "p=%d", p)
	}
	for _, n := range []uint64{0, 1, 2, 9, 4000, 600851475143} {
		assert.False(t, isPrime(n), "n=%d", n)
	}
}

func TestResolveRange(t *testing.T) {
	start, end, err := resolveRange(4000, 5000, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(4000), start)
	assert.Equal(t, uint64(5000), end)

	start, end, err = resolveRange(0, 0, 13)
	require.NoError(t, err)
	assert.Equal(t, uint64(13), start)
	assert.Equal(t, uint64(14), end)

	_, _, err = resolveRange(10, 10, 0)
	assert.Error(t, err)

	_, _, err = resolveRange(10, 20, 13)
	assert.Error(t, err)
}

func TestRootCmdFlags(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.Flags().Set("start", "4000"))
	require.NoError(t, cmd.Flags().Set("end", "5000"))
	require.NoError(t, cmd.Flags().Set("workers", "8"))
	assert.NotNil(t, cmd.Flags().Lookup("log-level"))
}
