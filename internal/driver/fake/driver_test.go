package fake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriverKeepsLastFrame(t *testing.T) {
	d := &Driver{Every: 1}
	require.NoError(t, d.Write([]byte{1, 2, 3, 4, 5, 6}))
	require.NoError(t, d.Write([]byte{7, 8, 9, 10, 11, 12}))
	assert.Equal(t, 2, d.Count())
	assert.Equal(t, []byte{7, 8, 9, 10, 11, 12}, d.Last())

	require.NoError(t, d.Close())
	assert.True(t, d.Closed())
}

func TestDriverToleratesEmptyFrame(t *testing.T) {
	d := &Driver{Every: 1}
	assert.NoError(t, d.Write(nil))
	assert.Empty(t, d.Last())
}
