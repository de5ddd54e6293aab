package vault

import (
	"strings"

	"gopkg.in/yaml.v3"
)

const frontMatterDelimiter = "---"

// ParseFrontMatter splits a note into its YAML front matter block and body.
// A front matter block is a leading "---" line, YAML content, and a closing
// "---" line. Notes without one, or with YAML that fails to parse, come back
// with a nil map and the full text as body. Front matter never makes a note
// unreadable.
func ParseFrontMatter(raw string) (map[string]any, string) {
	if !strings.HasPrefix(raw, frontMatterDelimiter+"\n") && raw != frontMatterDelimiter {
		return nil, raw
	}

	rest := strings.TrimPrefix(raw, frontMatterDelimiter+"\n")
	end := strings.Index(rest, "\n"+frontMatterDelimiter)
	if end < 0 {
		return nil, raw
	}
	block := rest[:end]
	body := rest[end+len("\n"+frontMatterDelimiter):]
	// The closing delimiter line may end with \n or EOF.
	if strings.HasPrefix(body, "\n") {
		body = body[1:]
	} else if body != "" {
		// Closing "---" was a prefix of a longer line ("----"), not a delimiter.
		return nil, raw
	}

	var meta map[string]any
	if err := yaml.Unmarshal([]byte(block), &meta); err != nil {
		return nil, raw
	}
	return meta, body
}
