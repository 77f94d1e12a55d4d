package autosave

import (
	"strings"

	"golang.org/x/net/html"
)

// inline tags join the text around them; every other tag separates words.
var inlineTags = map[string]bool{
	"a": true, "abbr": true, "b": true, "code": true, "em": true, "i": true,
	"mark": true, "s": true, "small": true, "span": true, "strong": true,
	"sub": true, "sup": true, "u": true,
}

// CountWords strips markup from content and counts the whitespace-delimited
// tokens left. Degenerate content yields 0.
func CountWords(content string) int {
	var text strings.Builder
	skip := 0

	z := html.NewTokenizer(strings.NewReader(content))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}

		switch tt {
		case html.TextToken:
			if skip == 0 {
				text.Write(z.Text())
			}
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if tag == "script" || tag == "style" {
				switch tt {
				case html.StartTagToken:
					skip++
				case html.EndTagToken:
					if skip > 0 {
						skip--
					}
				}
			}
			if !inlineTags[tag] {
				text.WriteByte(' ')
			}
		}
	}

	return len(strings.Fields(text.String()))
}
