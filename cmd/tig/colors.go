package main

import "github.com/fatih/color"

var (
	hashC    = color.New(color.FgYellow)
	treeC    = color.New(color.FgBlue)
	blobC    = color.New(color.Faint)
	commitC  = color.New(color.FgMagenta)
	currentC = color.New(color.FgGreen, color.Bold)
	successC = color.New(color.FgGreen)
)

// kindColor picks the color used for an object type column.
func kindColor(kind string) *color.Color {
	switch kind {
	case "tree":
		return treeC
	case "commit", "tag":
		return commitC
	}
	return blobC
}
