package model

// Status strings shared by fetch and search results. Failures are values,
// never errors: a non-2xx response is HTTP_<code>, a transport failure is
// FETCH_<reason>, and search failures carry a BRAVE_ prefix so the two
// channels stay distinguishable in the output record.
const (
	StatusOK           = "OK"
	StatusFetchTimeout = "FETCH_TIMEOUT"

	StatusBraveKeyMissing   = "BRAVE_API_KEY_MISSING"
	StatusBraveFetchTimeout = "BRAVE_FETCH_TIMEOUT"
)

// FetchResult is the outcome of fetching one URL. Text is empty on failure.
type FetchResult struct {
	OK     bool   `json:"ok"`
	Status string `json:"status"`
	URL    string `json:"url"`
	Text   string `json:"text"`
}

// SearchResult is the outcome of a search-enrichment query. Text is the
// concatenated snippet text, empty on failure.
type SearchResult struct {
	OK     bool   `json:"ok"`
	Status string `json:"status"`
	Text   string `json:"text"`
}
