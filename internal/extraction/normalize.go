package extraction

import (
	"regexp"
	"strings"
)

// openingFence matches a leading Markdown fence. A language tag is consumed
// when it sits alone on the fence line, or when it is an inline "json".
var openingFence = regexp.MustCompile("^```(?:[A-Za-z0-9_+-]*[ \\t]*\\r?\\n|(?i:json))?")

const closingFence = "```"

// Normalize strips the outermost code fence the model may wrap around its
// answer and parses the rest as a JSON object.
// Fence markers inside the payload are left untouched.
func Normalize(raw string) (*Result, error) {
	return parseResult([]byte(stripCodeFences(raw)))
}

func stripCodeFences(raw string) string {
	text := strings.TrimSpace(raw)
	if loc := openingFence.FindStringIndex(text); loc != nil {
		text = text[loc[1]:]
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, closingFence)
	return strings.TrimSpace(text)
}
