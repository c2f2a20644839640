package expr

import "testing"

func TestProgramMatch(t *testing.T) {
	t.Parallel()

	item := map[string]any{
		"status": "open",
		"score":  float64(12),
		"active": true,
		"flag":   "false",
		"owner":  map[string]any{"name": "ana"},
		"tags":   []any{"a", "b"},
	}

	cases := []struct {
		rule string
		want bool
	}{
		{"", true},
		{"active", true},
		{"!active", false},
		{"missing", false},
		{`status == "open"`, true},
		{`status != 'open'`, false},
		{"status == open", true},
		{"score >= 12", true},
		{"score > 12", false},
		{"score < 20 && active", true},
		{"score < 5 || owner.name == ana", true},
		{"!(score < 5 || missing)", true},
		{"flag == false", true},
		{"owner.name == null", false},
		{"missing == null", true},
		{"tags.1 == b", true},
		{`status < "p"`, true},
	}

	for _, tc := range cases {
		prog, err := Compile(tc.rule)
		if err != nil {
			t.Fatalf("compile %q: %v", tc.rule, err)
		}
		got, err := prog.Match(item)
		if err != nil {
			t.Fatalf("match %q: %v", tc.rule, err)
		}
		if got != tc.want {
			t.Fatalf("rule %q: expected %v, got %v", tc.rule, tc.want, got)
		}
	}
}

func TestProgramMatch_ScalarItem(t *testing.T) {
	t.Parallel()

	prog, err := Compile(`it != "skip"`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if ok, _ := prog.Match("keep"); !ok {
		t.Fatalf("expected keep to match")
	}
	if ok, _ := prog.Match("skip"); ok {
		t.Fatalf("expected skip to be filtered")
	}
}

func TestCompileErrors(t *testing.T) {
	t.Parallel()

	for _, rule := range []string{
		"a = 1",
		"a & b",
		"(a",
		`a == "open`,
		"a ==",
		"a > true",
		"== 3",
		"a b",
	} {
		if _, err := Compile(rule); err == nil {
			t.Fatalf("expected error for %q", rule)
		}
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	data := map[string]any{
		"data":    map[string]any{"items": []any{map[string]any{"id": 1.0}}},
		"a.b":     "exact",
		"scalars": []any{"x"},
	}
	if got, ok := Lookup(data, "data.items.0.id"); !ok || got != 1.0 {
		t.Fatalf("expected nested lookup, got %v (%v)", got, ok)
	}
	if got, ok := Lookup(data, "a.b"); !ok || got != "exact" {
		t.Fatalf("expected exact key match, got %v", got)
	}
	if _, ok := Lookup(data, "data.nope"); ok {
		t.Fatalf("expected missing path")
	}
	if _, ok := Lookup(data, "scalars.5"); ok {
		t.Fatalf("expected out of range index to miss")
	}
}
