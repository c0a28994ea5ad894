package render

import (
	"testing"

	"gamedex/internal/catalog"
)

func named(names ...string) []catalog.Entry {
	entries := make([]catalog.Entry, 0, len(names))
	for _, name := range names {
		entries = append(entries, catalog.Entry{Name: name, Platform: "steam"})
	}
	return entries
}

func viewNames(entries []catalog.Entry) []string {
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name)
	}
	return names
}

func TestSortKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"The Witcher", "witcher"},
		{"A Quiet Place", "quiet place"},
		{"An Odyssey", "odyssey"},
		{"L'Aventure", "aventure"},
		{"Les Mondes", "mondes"},
		{"S.T.A.L.K.E.R. 2", "stalker 2"},
		{"  Half-Life 2  ", "halflife 2"},
		{"Them", "them"},
		{"Zelda", "zelda"},
	}
	for _, tc := range tests {
		if got := sortKey(tc.in); got != tc.want {
			t.Errorf("sortKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestBuildViewOrdering(t *testing.T) {
	entries := named("The Witcher", "A Quiet Place", "Zelda")
	cmp := newComparator("en")

	asc := buildView(entries, Options{}, cmp, nil)
	wantAsc := []string{"A Quiet Place", "The Witcher", "Zelda"}
	for i, name := range viewNames(asc) {
		if name != wantAsc[i] {
			t.Fatalf("ascending = %v, want %v", viewNames(asc), wantAsc)
		}
	}

	desc := buildView(entries, Options{Descending: true}, cmp, nil)
	wantDesc := []string{"Zelda", "The Witcher", "A Quiet Place"}
	for i, name := range viewNames(desc) {
		if name != wantDesc[i] {
			t.Fatalf("descending = %v, want %v", viewNames(desc), wantDesc)
		}
	}
}

func TestBuildViewFilters(t *testing.T) {
	entries := []catalog.Entry{
		{Name: "Portal", Platform: "steam", Identity: "400"},
		{Name: "Fortnite", Platform: "epic", Identity: "fn"},
		{Name: "Half-Life", Platform: "steam", Identity: "70"},
	}
	cmp := newComparator("en")

	steam := buildView(entries, Options{Platform: "steam"}, cmp, nil)
	if len(steam) != 2 {
		t.Fatalf("platform filter kept %d entries, want 2", len(steam))
	}

	searched := buildView(entries, Options{Search: "life"}, cmp, nil)
	if len(searched) != 1 || searched[0].Name != "Half-Life" {
		t.Fatalf("search = %v", viewNames(searched))
	}

	favorite := func(entry catalog.Entry) bool { return entry.Identity == "400" }
	favs := buildView(entries, Options{FavoritesOnly: true}, cmp, favorite)
	if len(favs) != 1 || favs[0].Name != "Portal" {
		t.Fatalf("favorites = %v", viewNames(favs))
	}

	// FavoritesOnly without a predicate yields an empty view, not all.
	if got := buildView(entries, Options{FavoritesOnly: true}, cmp, nil); len(got) != 0 {
		t.Fatalf("favorites without predicate = %v", viewNames(got))
	}
}

func TestComparatorFallsBackToEnglish(t *testing.T) {
	cmp := newComparator("not-a-locale")
	if !cmp.less("Alpha", "Beta") {
		t.Fatal("expected Alpha < Beta under fallback collation")
	}
}
