package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScrollbackTail(t *testing.T) {
	s := NewScrollback(0)
	require.Nil(t, s.Tail(5))

	s.Write([]byte("one\n"))
	s.Write([]byte("two\r\nthree\n"))
	s.Write([]byte("four")) // no trailing newline

	require.Equal(t, []string{"one", "two", "three", "four"}, s.Tail(10))
	require.Equal(t, []string{"three", "four"}, s.Tail(2))
}

func TestScrollbackEnforcesLimit(t *testing.T) {
	s := NewScrollback(16)
	s.Write([]byte(strings.Repeat("a", 10)))
	s.Write([]byte(strings.Repeat("b", 10)))

	lines := s.Tail(5)
	require.Len(t, lines, 1)
	require.Len(t, lines[0], 16)
	require.True(t, strings.HasSuffix(lines[0], "bbbbbbbbbb"))
}

func TestScrollbackPreservesPartialChunks(t *testing.T) {
	s := NewScrollback(0)
	s.Write([]byte("$ ls"))
	s.Write([]byte(" -la\n"))
	s.Write([]byte("total 8\n"))

	require.Equal(t, []string{"$ ls -la", "total 8"}, s.Tail(10))
}
