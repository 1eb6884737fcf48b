package errors

import "regexp"

// MaxInputSize is the largest polymer or license input accepted by
// [ValidateInputSize].
const MaxInputSize = 1 << 20

// ValidateSymbol validates a unit passed as the ignored unit. It must be a
// single ASCII letter; case does not matter.
func ValidateSymbol(s string) error {
	if len(s) != 1 {
		return New(ErrCodeInvalidSymbol, "ignored unit must be a single letter, got %q", s)
	}
	c := s[0]
	if !('a' <= c && c <= 'z') && !('A' <= c && c <= 'Z') {
		return New(ErrCodeInvalidSymbol, "ignored unit must be a letter, got %q", s)
	}
	return nil
}

// ValidateInputSize rejects inputs larger than [MaxInputSize].
func ValidateInputSize(n int) error {
	if n > MaxInputSize {
		return New(ErrCodeInputTooLarge, "input too large (%d bytes, max %d)", n, MaxInputSize)
	}
	return nil
}

// ValidatePolymer checks that a polymer contains only ASCII letters.
// Surrounding whitespace should be trimmed by the caller.
func ValidatePolymer(seq []byte) error {
	if err := ValidateInputSize(len(seq)); err != nil {
		return err
	}
	for i, c := range seq {
		if !('a' <= c && c <= 'z') && !('A' <= c && c <= 'Z') {
			return New(ErrCodeInvalidInput, "unit %d: %q is not a letter", i, c)
		}
	}
	return nil
}

var colorRegex = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidateColor validates a CSS hex color such as "#804818" or "#fff".
func ValidateColor(name, color string) error {
	if !colorRegex.MatchString(color) {
		return New(ErrCodeInvalidParameter, "%s: %q is not a hex color", name, color)
	}
	return nil
}

var presetNameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// ValidatePresetName validates a preset name. Names are lowercase and
// hyphen-separated, e.g. "holiday-wreath".
func ValidatePresetName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPreset, "preset name cannot be empty")
	}
	if len(name) > 64 {
		return New(ErrCodeInvalidPreset, "preset name too long (max 64 characters)")
	}
	if !presetNameRegex.MatchString(name) {
		return New(ErrCodeInvalidPreset, "invalid preset name: %q", name)
	}
	return nil
}
