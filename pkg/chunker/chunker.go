// Package chunker splits raw markdown policy documents into ordered,
// header-bounded chunks. Chunking is deterministic: identical input
// always yields identical boundaries and ids.
package chunker

import (
	"fmt"
	"strings"

	"github.com/lacviet-ai/quyche/pkg/types"
)

// Split parses document content into chunks along `## ` headers.
//
// The single `# ` document title is captured as context for every chunk
// (its Parent field) and never opens a chunk of its own. `### `
// subsection headers stay inside the enclosing chunk verbatim. The last
// chunk runs to the end of the document. Whitespace-only segments are
// dropped.
func Split(content, docID string) []types.Chunk {
	lines := strings.Split(content, "\n")

	var (
		chunks    []types.Chunk
		current   []string
		docTitle  string
		heading   string
		startLine int
	)

	flush := func(endLine int) {
		text := strings.TrimSpace(strings.Join(current, "\n"))
		if text == "" {
			return
		}
		title := heading
		if title == "" {
			title = docTitle
		}
		chunks = append(chunks, types.Chunk{
			ID:        fmt.Sprintf("%s_%d", docID, len(chunks)),
			Title:     title,
			Content:   text,
			Parent:    docTitle,
			StartLine: startLine,
			EndLine:   endLine,
		})
	}

	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "# ") && !strings.HasPrefix(line, "## "):
			// Document title: context only, not part of any chunk body.
			docTitle = strings.TrimSpace(line[2:])
		case strings.HasPrefix(line, "## "):
			flush(i - 1)
			heading = strings.TrimSpace(line[3:])
			current = []string{line}
			startLine = i
		default:
			current = append(current, line)
		}
	}
	flush(len(lines) - 1)

	return chunks
}
