package promptcompose

import "strings"

// Block is one titled prompt section. Empty lines are ignored.
type Block struct {
	Title string
	Lines []string
}

func (b Block) render() string {
	var lines []string
	for _, l := range b.Lines {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return ""
	}
	if b.Title == "" {
		return strings.Join(lines, "\n")
	}
	return b.Title + "\n" + strings.Join(lines, "\n")
}

// Blocks keeps sections in insertion order and renders only the non-empty ones.
type Blocks []Block

// Add appends a block.
func (bs *Blocks) Add(title string, lines ...string) {
	*bs = append(*bs, Block{Title: title, Lines: lines})
}

// String joins rendered blocks with a blank line.
func (bs Blocks) String() string {
	var parts []string
	for _, b := range bs {
		if r := b.render(); r != "" {
			parts = append(parts, r)
		}
	}
	return strings.Join(parts, "\n\n")
}
