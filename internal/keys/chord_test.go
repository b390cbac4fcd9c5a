package keys_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/xkilldash9x/webpilot/internal/keys"
)

func TestTranslate_Chord(t *testing.T) {
	chord, err := keys.Structured.Translate("Ctrl+Shift+T")
	require.NoError(t, err)
	assert.Equal(t, []keys.Key{keys.Ctrl, keys.Shift}, chord.Modifiers)
	assert.Equal(t, keys.Key("KeyT"), chord.Primary)
	assert.Empty(t, chord.Unmapped)
	assert.Equal(t, "Control+Shift+KeyT", chord.String())
}

func TestTranslate_Names(t *testing.T) {
	cases := map[string]keys.Key{
		"Return":     keys.Enter,
		"Page_Down":  keys.PageDown,
		"Page_Up":    keys.PageUp,
		"BackSpace":  keys.Backspace,
		"Left":       keys.ArrowLeft,
		"Down":       keys.ArrowDown,
		"alt":        keys.Alt,
		"F11":        keys.Key("F11"),
		"7":          keys.Key("Digit7"),
		"Digit3":     keys.Key("Digit3"),
		"a":          keys.Key("KeyA"),
		"KeyZ":       keys.Key("KeyZ"),
		"Backquote":  keys.Backquote,
		"Escape":     keys.Escape,
		"pagedown":   keys.PageDown,
		"arrowup":    keys.ArrowUp,
		"enter":      keys.Enter,
		"super":      keys.Meta,
		"Backslash":  keys.Backslash,
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			chord, err := keys.Structured.Translate(in)
			require.NoError(t, err)
			assert.Empty(t, chord.Modifiers)
			assert.Equal(t, want, chord.Primary)
		})
	}
}

func TestTranslate_Textual(t *testing.T) {
	chord, err := keys.Textual.Translate("ctrl c")
	require.NoError(t, err)
	assert.Equal(t, []keys.Key{keys.Ctrl}, chord.Modifiers)
	assert.Equal(t, keys.Key("KeyC"), chord.Primary)

	chord, err = keys.Textual.Translate("ctrl+shift+arrowdown")
	require.NoError(t, err)
	assert.Equal(t, []keys.Key{keys.Ctrl, keys.Shift}, chord.Modifiers)
	assert.Equal(t, keys.ArrowDown, chord.Primary)
}

func TestTranslate_UnmappedPassesThrough(t *testing.T) {
	chord, err := keys.Structured.Translate("Hyper+XF86AudioPlay")
	require.NoError(t, err)
	assert.Equal(t, []keys.Key{"Hyper"}, chord.Modifiers)
	assert.Equal(t, keys.Key("XF86AudioPlay"), chord.Primary)
	assert.Equal(t, []string{"Hyper", "XF86AudioPlay"}, chord.Unmapped)
}

func TestTranslate_Edges(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, err := keys.Structured.Translate("")
		assert.ErrorIs(t, err, keys.ErrEmptyChord)
		_, err = keys.Structured.Translate("+")
		assert.ErrorIs(t, err, keys.ErrEmptyChord)
	})

	t.Run("delimiter as key", func(t *testing.T) {
		chord, err := keys.Structured.Translate("ctrl++")
		require.NoError(t, err)
		assert.Equal(t, []keys.Key{keys.Ctrl}, chord.Modifiers)
		assert.Equal(t, keys.Key("+"), chord.Primary)
	})

	t.Run("minus", func(t *testing.T) {
		chord, err := keys.Structured.Translate("ctrl+-")
		require.NoError(t, err)
		assert.Equal(t, keys.Minus, chord.Primary)
	})
}

func TestTranslate_OrderProperty(t *testing.T) {
	names := []string{"ctrl", "shift", "alt", "super", "a", "Return", "F5", "9", "Tab", "Page_Up"}
	rapid.Check(t, func(t *rapid.T) {
		picked := rapid.SliceOfN(rapid.SampledFrom(names), 1, 5).Draw(t, "tokens")
		chord, err := keys.Structured.Translate(strings.Join(picked, "+"))
		if err != nil {
			t.Fatalf("translate: %v", err)
		}
		got := chord.Keys()
		if len(got) != len(picked) {
			t.Fatalf("got %d keys for %d tokens", len(got), len(picked))
		}
		for i, name := range picked {
			want, _ := keys.Canonical(name)
			if got[i] != want {
				t.Fatalf("token %d: got %q want %q", i, got[i], want)
			}
		}
	})
}
