package ports

import "context"

// ResolvedLink is one outgoing hyperlink as reported by the data source
type ResolvedLink struct {
	Title string
	URL   string
}

// ResolvedArticle is the output contract of article resolution. The
// CanonicalTitle may differ from the requested query (redirects,
// capitalization, disambiguation) and is the only valid dedup key.
type ResolvedArticle struct {
	CanonicalTitle string
	Content        string
	FullDocument   string
	SourceURL      string
	OutgoingLinks  []ResolvedLink
}

// LinkTitles returns just the titles of the outgoing links
func (a *ResolvedArticle) LinkTitles() []string {
	titles := make([]string, 0, len(a.OutgoingLinks))
	for _, link := range a.OutgoingLinks {
		titles = append(titles, link.Title)
	}
	return titles
}

// ArticleResolver normalizes a user-supplied query, title, or URL into a
// canonical fetch against the external data source. Implementations signal
// missing pages as NotFoundError and transient failures as
// SourceUnavailableError; they never retry.
type ArticleResolver interface {
	Resolve(ctx context.Context, query string) (*ResolvedArticle, error)
}
