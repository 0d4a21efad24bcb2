package pipeline

import (
	"regexp"
	"strings"

	"github.com/sells-group/buyer-signals/internal/model"
)

var (
	scriptRe = regexp.MustCompile(`(?is)<script[\s\S]*?</script>`)
	styleRe  = regexp.MustCompile(`(?is)<style[\s\S]*?</style>`)
	tagRe    = regexp.MustCompile(`<[^>]+>`)
	spaceRe  = regexp.MustCompile(`\s+`)
)

// Normalize strips script and style blocks (content included), removes the
// remaining markup, collapses whitespace runs to single spaces and trims.
func Normalize(html string) string {
	text := scriptRe.ReplaceAllString(html, " ")
	text = styleRe.ReplaceAllString(text, " ")
	text = tagRe.ReplaceAllString(text, " ")
	text = spaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// BuildCorpus merges the normalized fetched page with the raw search
// snippet text into the single extraction corpus for a buyer. The two
// sources are additive: search text is appended whether or not the direct
// fetch succeeded. Snippets are plain text already and only get trimmed.
func BuildCorpus(fetched model.FetchResult, search model.SearchResult) string {
	var page, snippets string
	if fetched.OK {
		page = Normalize(fetched.Text)
	}
	if search.OK {
		snippets = search.Text
	}
	return strings.TrimSpace(page + " " + snippets)
}
