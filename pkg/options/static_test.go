package options

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

func TestParseStatic(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []model.OptionItem
	}{
		{
			name: "comma separated",
			raw:  "Option 1, Option 2",
			want: []model.OptionItem{{Value: "Option 1", Label: "Option 1"}, {Value: "Option 2", Label: "Option 2"}},
		},
		{
			name: "json objects",
			raw:  `[{"value":"a","label":"A"}]`,
			want: []model.OptionItem{{Value: "a", Label: "A"}},
		},
		{
			name: "json scalars",
			raw:  `["a", 2, true]`,
			want: []model.OptionItem{{Value: "a", Label: "a"}, {Value: "2", Label: "2"}, {Value: "true", Label: "true"}},
		},
		{
			name: "json object missing label",
			raw:  `[{"value":"a"}]`,
			want: []model.OptionItem{{Value: "a", Label: `{"value":"a"}`}},
		},
		{
			name: "number list is not json",
			raw:  "123,456",
			want: []model.OptionItem{{Value: "123", Label: "123"}, {Value: "456", Label: "456"}},
		},
		{
			name: "json object is not an array",
			raw:  `{"a":1}`,
			want: []model.OptionItem{{Value: `{"a":1}`, Label: `{"a":1}`}},
		},
		{
			name: "empty entries dropped",
			raw:  " a ,, ,b,",
			want: []model.OptionItem{{Value: "a", Label: "a"}, {Value: "b", Label: "b"}},
		},
		{name: "blank", raw: "   ", want: []model.OptionItem{}},
		{name: "empty", raw: "", want: []model.OptionItem{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseStatic(tc.raw)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("options mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFormatStaticRoundTrip(t *testing.T) {
	items := []model.OptionItem{{Value: "a", Label: "A"}, {Value: "b, c", Label: "B and C"}}
	got := ParseStatic(FormatStatic(items))
	if diff := cmp.Diff(items, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
	if FormatStatic(nil) != "" {
		t.Fatalf("expected empty string for no options")
	}
}
