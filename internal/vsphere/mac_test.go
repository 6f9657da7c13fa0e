package vsphere

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMAC(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "already normalized",
			input: "00:50:56:aa:bb:cc",
			want:  "00:50:56:aa:bb:cc",
		},
		{
			name:  "uppercase",
			input: "00:50:56:AA:BB:CC",
			want:  "00:50:56:aa:bb:cc",
		},
		{
			name:  "hyphen separated",
			input: "00-50-56-AA-BB-CC",
			want:  "00:50:56:aa:bb:cc",
		},
		{
			name:  "dot separated cisco style",
			input: "0050.56aa.bbcc",
			want:  "00:50:56:aa:bb:cc",
		},
		{
			name:  "no separators",
			input: "005056aabbcc",
			want:  "00:50:56:aa:bb:cc",
		},
		{
			name:  "space separated",
			input: "00 50 56 aa bb cc",
			want:  "00:50:56:aa:bb:cc",
		},
		{
			name:  "surrounding whitespace",
			input: "  00:50:56:aa:bb:cc\n",
			want:  "00:50:56:aa:bb:cc",
		},
		{
			name:  "mixed separators",
			input: "00-50:56.aa bb-cc",
			want:  "00:50:56:aa:bb:cc",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeMAC(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizeMACInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "whitespace only", input: "   "},
		{name: "too short", input: "00:50:56:aa:bb"},
		{name: "too long", input: "00:50:56:aa:bb:cc:dd"},
		{name: "non-hex digits", input: "00:50:56:aa:bb:zz"},
		{name: "garbage", input: "not-a-mac"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NormalizeMAC(tc.input)
			require.Error(t, err)

			var invalid *InvalidInputError
			assert.ErrorAs(t, err, &invalid)
			assert.True(t, errors.Is(err, ErrInvalidInput))
		})
	}
}

func TestNormalizeMACIdempotent(t *testing.T) {
	first, err := NormalizeMAC("00-50-56-AA-BB-CC")
	require.NoError(t, err)

	second, err := NormalizeMAC(first)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
