package middleware

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeToken(t *testing.T) {
	require.Equal(t, "abc", NormalizeToken("abc"))
	require.Equal(t, "abc", NormalizeToken("  abc  "))
	require.Equal(t, "abc", NormalizeToken("Bearer abc"))
	require.Equal(t, "abc", NormalizeToken("bearer abc"))
	require.Equal(t, "", NormalizeToken(""))
	require.Equal(t, "", NormalizeToken("   "))
}
