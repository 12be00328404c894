package lint

import (
	"sort"
	"strings"
)

// defaultTypoCatalog lists misspellings that keep showing up in drafts, with
// their intended spellings. The catalog is copied per Linter so overrides
// never leak between instances.
func defaultTypoCatalog() map[string]string {
	return map[string]string{
		"aplication/json": "application/json",
		"varified":        "verified",
		"varification":    "verification",
		"varifying":       "verifying",
		"recieve":         "receive",
		"recieved":        "received",
		"seperate":        "separate",
		"definately":      "definitely",
		"occured":         "occurred",
	}
}

type typoHit struct {
	Line  int
	Found string
	Want  string
}

// scanTypos walks the markdown body line by line and reports catalog matches.
// Fenced code blocks (``` or ~~~) are skipped wholesale: their text is code
// samples, not prose. Inline code spans are scanned; a typo inside backticks
// is still prose the reader sees. Matching is case-insensitive and each typo
// is reported once per line.
func scanTypos(body []byte, catalog map[string]string) []typoHit {
	if len(body) == 0 || len(catalog) == 0 {
		return nil
	}

	hits := []typoHit{}
	eachProseLine(body, func(lineNo int, line string) {
		lowered := strings.ToLower(line)
		for typo, want := range catalog {
			if strings.Contains(lowered, typo) {
				hits = append(hits, typoHit{
					Line:  lineNo,
					Found: typo,
					Want:  want,
				})
			}
		}
	})

	// Map iteration is unordered; fix the report order per line.
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Line != hits[j].Line {
			return hits[i].Line < hits[j].Line
		}
		return hits[i].Found < hits[j].Found
	})
	return hits
}

// eachProseLine visits every body line outside fenced code blocks, passing a
// 1-based line number. A fence opened with ``` only closes on ```, so tildes
// inside a backtick block stay part of the block.
func eachProseLine(body []byte, fn func(lineNo int, line string)) {
	inFence := false
	fenceMarker := ""

	for index, line := range strings.Split(string(body), "\n") {
		trimmed := strings.TrimLeft(line, " \t")

		if marker := fenceDelimiter(trimmed); marker != "" {
			if !inFence {
				inFence = true
				fenceMarker = marker
			} else if marker == fenceMarker {
				inFence = false
				fenceMarker = ""
			}
			continue
		}
		if inFence {
			continue
		}
		fn(index+1, line)
	}
}

// fenceDelimiter returns the fence marker when the line opens or closes a
// fenced code block, or "" otherwise.
func fenceDelimiter(trimmed string) string {
	for _, marker := range []string{"```", "~~~"} {
		if strings.HasPrefix(trimmed, marker) {
			return marker
		}
	}
	return ""
}
