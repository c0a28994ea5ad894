package render

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"gamedex/internal/catalog"
)

// Options selects and orders the visible slice of the catalog.
type Options struct {
	// Platform keeps only entries with this tag; empty means all.
	Platform string
	// FavoritesOnly keeps only entries the favorites predicate accepts.
	FavoritesOnly bool
	// Search is a case-insensitive substring match over display names.
	Search string
	// Descending reverses the title ordering.
	Descending bool
}

// comparator orders normalized title keys using locale collation rules.
type comparator struct {
	collator *collate.Collator
}

func newComparator(locale string) *comparator {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &comparator{collator: collate.New(tag, collate.IgnoreCase)}
}

func (c *comparator) less(a, b string) bool {
	return c.collator.CompareString(sortKey(a), sortKey(b)) < 0
}

// View filters and orders a snapshot outside the scheduler, for
// synchronous consumers like the HTTP API.
func View(entries []catalog.Entry, opts Options, locale string, favorite func(catalog.Entry) bool) []catalog.Entry {
	return buildView(entries, opts, newComparator(locale), favorite)
}

// buildView filters and orders a snapshot. The snapshot is already
// deduplicated by the merger; the view never re-keys it.
func buildView(entries []catalog.Entry, opts Options, cmp *comparator, favorite func(catalog.Entry) bool) []catalog.Entry {
	search := strings.ToLower(strings.TrimSpace(opts.Search))

	view := make([]catalog.Entry, 0, len(entries))
	for _, entry := range entries {
		if opts.Platform != "" && entry.Platform != opts.Platform {
			continue
		}
		if opts.FavoritesOnly && (favorite == nil || !favorite(entry)) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(entry.Name), search) {
			continue
		}
		view = append(view, entry)
	}

	sort.SliceStable(view, func(i, j int) bool {
		if opts.Descending {
			return cmp.less(view[j].Name, view[i].Name)
		}
		return cmp.less(view[i].Name, view[j].Name)
	})
	return view
}
