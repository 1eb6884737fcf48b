// Package sample embeds example inputs used when no input file is given.
package sample

import _ "embed"

// Polymer is a generated polymer of about six thousand units.
//
//go:embed polymer.txt
var Polymer []byte

// License is a generated license with a few hundred nodes.
//
//go:embed license.txt
var License []byte

// For returns the sample input for kind ("polymer" or "license"), or nil.
func For(kind string) []byte {
	switch kind {
	case "polymer":
		return Polymer
	case "license":
		return License
	}
	return nil
}
