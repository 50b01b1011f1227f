package colors

import (
	"slices"
	"strings"
)

// Built-in palettes.
var (
	Warm = Palette{
		MustHex("FFF7ECFF"), MustHex("FEE8C8FF"), MustHex("FDD49EFF"), MustHex("FDBB84FF"),
		MustHex("FC8D59FF"), MustHex("EF6548FF"), MustHex("D7301FFF"), MustHex("990000FF"),
	}
	Cold = Palette{
		MustHex("F7FCF0FF"), MustHex("E0F3DBFF"), MustHex("CCEBC5FF"), MustHex("A8DDB5FF"),
		MustHex("7BCCC4FF"), MustHex("4EB3D3FF"), MustHex("2B8CBEFF"), MustHex("08589EFF"),
	}
	BlueToRed = Palette{
		MustHex("0570B0FF"), MustHex("3690C0FF"), MustHex("74A9CFFF"), MustHex("A6BDDBFF"),
		MustHex("D0D1E6FF"), MustHex("ECE7F2FF"), MustHex("FFF7ECFF"), MustHex("FEE8C8FF"),
		MustHex("FDD49EFF"), MustHex("FDBB84FF"), MustHex("FC8D59FF"), MustHex("EF6548FF"),
		MustHex("D7301FFF"),
	}
	PurpleToYellow = Palette{
		MustHex("980B63FF"), MustHex("CA5FA7FF"), MustHex("F596FDFF"), MustHex("F7D8FDFF"),
		MustHex("FAD932FF"),
	}
)

var byName = map[string]Palette{
	"warm":             Warm,
	"cold":             Cold,
	"blue_to_red":      BlueToRed,
	"purple_to_yellow": PurpleToYellow,
}

// ByName looks up a built-in palette. Names are case-insensitive and accept
// either underscores or dashes.
func ByName(name string) (Palette, bool) {
	key := strings.ReplaceAll(strings.ToLower(name), "-", "_")
	p, ok := byName[key]
	return p, ok
}

// Names lists the built-in palette names in sorted order.
func Names() []string {
	names := make([]string, 0, len(byName))
	for k := range byName {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}
