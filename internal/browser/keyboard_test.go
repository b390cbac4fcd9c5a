package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xkilldash9x/webpilot/internal/keys"
)

func TestKeyDefinitions_CoverCanonicalKeys(t *testing.T) {
	names := []string{
		"Return", "Tab", "space", "BackSpace", "Delete", "Escape", "Insert", "Home", "End",
		"Page_Up", "Page_Down", "Up", "Down", "Left", "Right", "ctrl", "alt", "shift", "super",
		"`", "-", "=", "\\", "[", "]", ";", "'", ",", ".", "/",
	}
	for c := 'a'; c <= 'z'; c++ {
		names = append(names, string(c))
	}
	for d := '0'; d <= '9'; d++ {
		names = append(names, string(d))
	}
	for _, f := range []string{"F1", "F6", "F12"} {
		names = append(names, f)
	}

	for _, name := range names {
		k, ok := keys.Canonical(name)
		if !assert.True(t, ok, name) {
			continue
		}
		_, known := lookupKey(string(k))
		assert.True(t, known, "no key definition for %s (%s)", k, name)
	}
}

func TestKeyDefinitions_Values(t *testing.T) {
	def, _ := lookupKey("KeyA")
	assert.Equal(t, keyDefinition{key: "a", code: "KeyA", keyCode: 65, text: "a", shiftKey: "A"}, def)
	assert.Equal(t, "A", def.withShift().text)

	def, _ = lookupKey("F12")
	assert.Equal(t, int64(123), def.keyCode)

	def, _ = lookupKey("Enter")
	assert.Equal(t, "\r", def.text)

	def, known := lookupKey("é")
	assert.False(t, known)
	assert.Equal(t, "é", def.text)
}
