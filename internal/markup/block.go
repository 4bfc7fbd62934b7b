package markup

import "strings"

// BlockKind classifies one line of an analysis body.
type BlockKind int

const (
	BlockProse BlockKind = iota
	BlockCode
)

func (k BlockKind) String() string {
	if k == BlockCode {
		return "code"
	}
	return "prose"
}

// Block is one non-blank line of a body. Code blocks keep Line verbatim and
// leave Parsed empty; prose blocks carry the parsed line.
type Block struct {
	Kind   BlockKind
	Line   string
	Parsed Parsed
}

// Classify reports whether line is a code line: it starts with four spaces
// or with a triple-backtick fence.
func Classify(line string) BlockKind {
	if strings.HasPrefix(line, "    ") || strings.HasPrefix(line, fence) {
		return BlockCode
	}
	return BlockProse
}

// HasContent reports whether body holds anything besides whitespace.
func HasContent(body string) bool {
	return strings.TrimSpace(body) != ""
}

// Blocks splits body on newlines, drops blank lines and classifies the rest.
// Prose lines are trimmed and parsed; code lines bypass the inline parser.
// A line opening a ``` fence keeps every following line code until a line
// starting with the closing fence; an unclosed fence runs to the end.
func Blocks(body string) []Block {
	lines := strings.Split(body, "\n")
	out := make([]Block, 0, len(lines))
	inFence := false
	for _, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, fence) {
			if !strings.Contains(line[len(fence):], fence) {
				inFence = !inFence
			}
			out = append(out, Block{Kind: BlockCode, Line: line})
			continue
		}
		if inFence || Classify(line) == BlockCode {
			out = append(out, Block{Kind: BlockCode, Line: line})
			continue
		}
		trimmed := strings.TrimSpace(line)
		out = append(out, Block{Kind: BlockProse, Line: trimmed, Parsed: Parse(trimmed)})
	}
	return out
}
