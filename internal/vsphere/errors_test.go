package vsphere

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorTaxonomy(t *testing.T) {
	t.Run("invalid input", func(t *testing.T) {
		err := error(&InvalidInputError{Input: "zz", Reason: "contains non-hexadecimal characters"})

		assert.True(t, errors.Is(err, ErrInvalidInput))
		assert.True(t, IsInvalidInput(err))
		assert.False(t, IsNotFound(err))
		assert.Contains(t, err.Error(), "zz")
	})

	t.Run("not found", func(t *testing.T) {
		err := error(&NotFoundError{Kind: "MAC address", Value: "00:50:56:aa:bb:cc"})

		assert.True(t, errors.Is(err, ErrNotFound))
		assert.True(t, IsNotFound(err))
		assert.False(t, IsConnectionError(err))
		assert.Contains(t, err.Error(), "MAC address")
		assert.Contains(t, err.Error(), "00:50:56:aa:bb:cc")
	})

	t.Run("connection failure", func(t *testing.T) {
		cause := errors.New("dial tcp: connection refused")
		err := error(&ConnectionError{Host: "vcenter.example.com", Err: cause})

		assert.True(t, errors.Is(err, ErrConnectionFailed))
		assert.False(t, errors.Is(err, ErrAuthenticationFailed))
		assert.True(t, IsConnectionError(err))
		// The transport cause stays reachable through the chain.
		assert.True(t, errors.Is(err, cause))
	})

	t.Run("authentication failure", func(t *testing.T) {
		cause := errors.New("ServerFaultCode: Cannot complete login")
		err := error(&ConnectionError{Host: "vcenter.example.com", Err: cause, Auth: true})

		assert.True(t, errors.Is(err, ErrAuthenticationFailed))
		assert.False(t, errors.Is(err, ErrConnectionFailed))
		assert.True(t, IsConnectionError(err))
		assert.Contains(t, err.Error(), "authentication failed")
	})
}

func TestErrorTaxonomySurvivesWrapping(t *testing.T) {
	inner := error(&NotFoundError{Kind: "name", Value: "web-01"})
	wrapped := fmt.Errorf("handling tool call: %w", inner)

	assert.True(t, IsNotFound(wrapped))

	var nf *NotFoundError
	assert.True(t, errors.As(wrapped, &nf))
	assert.Equal(t, "web-01", nf.Value)
}
