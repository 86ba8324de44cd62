package document

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Change is one incremental text modification, addressed in bytes.
// EndByte is exclusive. Replacing the whole document is a Change spanning
// [0, len(text)).
type Change struct {
	StartByte int
	EndByte   int
	Text      string
}

// ApplyChanges applies changes in order and returns the resulting text plus
// the edit descriptors the syntax layers need for incremental reparsing.
// Out-of-range offsets are clamped.
func ApplyChanges(text string, changes []Change) (string, []tree_sitter.InputEdit) {
	var edits []tree_sitter.InputEdit
	for _, change := range changes {
		start := change.StartByte
		end := change.EndByte
		if start < 0 {
			start = 0
		}
		if end > len(text) {
			end = len(text)
		}
		if start > end {
			start = end
		}

		newText := text[:start] + change.Text + text[end:]
		newEnd := start + len(change.Text)

		edits = append(edits, tree_sitter.InputEdit{
			StartByte:      uint(start),
			OldEndByte:     uint(end),
			NewEndByte:     uint(newEnd),
			StartPosition:  PointAt(text, start),
			OldEndPosition: PointAt(text, end),
			NewEndPosition: PointAt(newText, newEnd),
		})
		text = newText
	}
	return text, edits
}
