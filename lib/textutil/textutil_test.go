package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCollapseSpace(t *testing.T) {
	require.Equal(t, "a b c", CollapseSpace("  a \n b\t\tc "))
	require.Equal(t, "", CollapseSpace(" \n"))
}

func TestSameTitle(t *testing.T) {
	require.True(t, SameTitle("Hello   world ", "Hello world"))
	require.False(t, SameTitle("Hello world", "hello world"))
}
