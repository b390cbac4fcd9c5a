package schemas

// KeyEventData represents a structured key event, including the main key and active modifiers.
type KeyEventData struct {
	// Key is the canonical key token (e.g., "KeyA", "Enter", "Control").
	Key string
	// Modifiers is a bitmask of active modifiers.
	Modifiers KeyModifier
}

// KeyModifier represents keyboard modifiers (Ctrl, Alt, Shift, Meta).
// These values correspond directly to the CDP input.DispatchKeyEvent modifiers bitfield.
type KeyModifier int

const (
	ModNone  KeyModifier = 0
	ModAlt   KeyModifier = 1 // Corresponds to CDP modifier 1
	ModCtrl  KeyModifier = 2 // Corresponds to CDP modifier 2
	ModMeta  KeyModifier = 4 // Corresponds to CDP modifier 4
	ModShift KeyModifier = 8 // Corresponds to CDP modifier 8
)

// ModifierForKey maps a canonical modifier key token to its bit. Non-modifiers return ModNone.
func ModifierForKey(key string) KeyModifier {
	switch key {
	case "Alt":
		return ModAlt
	case "Control":
		return ModCtrl
	case "Meta":
		return ModMeta
	case "Shift":
		return ModShift
	default:
		return ModNone
	}
}
