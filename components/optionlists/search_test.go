package optionlists

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

func TestSearch_PrefixMatchesFirst(t *testing.T) {
	items := []model.OptionItem{
		{Value: "1", Label: "Blue Green"},
		{Value: "2", Label: "Green"},
		{Value: "3", Label: "Red"},
		{Value: "green-4", Label: "Forest"},
	}
	got := Search(items, "GREEN", 0, DefaultOptions())
	want := []model.OptionItem{
		{Value: "2", Label: "Green"},
		{Value: "green-4", Label: "Forest"},
		{Value: "1", Label: "Blue Green"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("search mismatch (-want +got):\n%s", diff)
	}
}

func TestSearch_NegativeLimitReturnsNothing(t *testing.T) {
	items := []model.OptionItem{{Value: "a", Label: "A"}}
	if got := Search(items, "a", -1, DefaultOptions()); got != nil {
		t.Fatalf("expected nil, got %#v", got)
	}
}

func TestSearch_EmptyQueryHonoursDefaultLimit(t *testing.T) {
	items := []model.OptionItem{{Value: "a"}, {Value: "b"}, {Value: "c"}}
	opts := NewOptions(WithDefaultLimit(2))
	got := Search(items, "  ", 0, opts)
	if len(got) != 2 || got[0].Value != "a" || got[1].Value != "b" {
		t.Fatalf("unexpected head of list: %#v", got)
	}
}

func TestListsFromStatic(t *testing.T) {
	got := ListsFromStatic(map[string]string{
		"sizes":  "S, M ,L",
		"levels": `[{"value":"1","label":"Low"},{"value":"2","label":"High"}]`,
	})
	want := map[string][]model.OptionItem{
		"sizes":  {{Value: "S", Label: "S"}, {Value: "M", Label: "M"}, {Value: "L", Label: "L"}},
		"levels": {{Value: "1", Label: "Low"}, {Value: "2", Label: "High"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("lists mismatch (-want +got):\n%s", diff)
	}
	if names := Names(NewOptions(WithLists(got))); !cmp.Equal(names, []string{"levels", "sizes"}) {
		t.Fatalf("unexpected names %v", names)
	}
}
