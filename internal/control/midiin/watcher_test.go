package midiin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPick(t *testing.T) {
	inputs := []string{"Launchkey Mini MIDI 1", "APC Key 25"}

	name, ok := pick(inputs, "apc")
	assert.True(t, ok)
	assert.Equal(t, "APC Key 25", name)

	_, ok = pick(inputs, "")
	assert.False(t, ok, "ambiguous without a pattern")

	name, ok = pick(inputs[:1], "")
	assert.True(t, ok)
	assert.Equal(t, "Launchkey Mini MIDI 1", name)

	_, ok = pick(inputs, "novation")
	assert.False(t, ok)
}

func TestExcluded(t *testing.T) {
	assert.True(t, matchAny("Midi Through Port-0", excluded))
	assert.False(t, matchAny("Launchkey Mini", excluded))
}
