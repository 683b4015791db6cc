package sanitize

import (
	"strings"
	"testing"
)

func TestMarkupAllowList(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"keeps formatting tags", "<b>bold</b> and <em>emphasis</em>", "<b>bold</b> and <em>emphasis</em>"},
		{"strips script", `<script>alert("x")</script>hello`, "hello"},
		{"strips div keeps text", "<div>text</div>", "text"},
		{"keeps anchor href", `<a href="https://example.com">link</a>`, `<a href="https://example.com">link</a>`},
		{"drops non-href anchor attrs", `<a href="https://example.com" target="_blank" data-evil="1">link</a>`, `<a href="https://example.com">link</a>`},
		{"drops javascript href keeps anchor", `<a href="javascript:alert(1)">link</a>`, "<a>link</a>"},
		{"keeps bare anchor", "<a>plain link</a>", "<a>plain link</a>"},
		{"empty input", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Markup(tc.input); got != tc.want {
				t.Fatalf("Markup(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestMarkupIdempotent(t *testing.T) {
	inputs := []string{
		"<b>ok</b>",
		`<script>alert(1)</script><a href="/x" onclick="y">z</a>`,
		"<div><span>nested</span></div>",
		"plain text with < and >",
	}
	for _, input := range inputs {
		once := Markup(input)
		if twice := Markup(once); twice != once {
			t.Fatalf("Markup not idempotent on %q: first %q, second %q", input, once, twice)
		}
	}
}

func TestMarkupClosure(t *testing.T) {
	out := Markup(`<table><tr><td onclick="x">cell</td></tr></table><iframe src="evil"></iframe><strong>keep</strong>`)
	for _, forbidden := range []string{"<table", "<tr", "<td", "<iframe", "onclick", "src="} {
		if strings.Contains(out, forbidden) {
			t.Fatalf("output %q contains forbidden fragment %q", out, forbidden)
		}
	}
	if !strings.Contains(out, "<strong>keep</strong>") {
		t.Fatalf("output %q lost allowed tag", out)
	}
}

func TestPlainText(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"  hello  ", "hello"},
		{"<script>x</script>", "scriptx/script"},
		{"javascript:alert(1)", "alert(1)"},
		{"JaVaScRiPt:alert(1)", "alert(1)"},
		{"javajavascript:script:payload", "payload"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := PlainText(tc.input); got != tc.want {
			t.Fatalf("PlainText(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestPlainTextIdempotent(t *testing.T) {
	inputs := []string{"<a>", "javascript:javascript:x", " padded ", "javajavascript:script:y"}
	for _, input := range inputs {
		once := PlainText(input)
		if twice := PlainText(once); twice != once {
			t.Fatalf("PlainText not idempotent on %q: first %q, second %q", input, once, twice)
		}
	}
}

func TestSearchTermStripsSQLPatterns(t *testing.T) {
	got := SearchTerm("admin'; DROP TABLE users; --")
	if strings.ContainsAny(got, `'"\`) {
		t.Fatalf("quotes or backslash survived: %q", got)
	}
	if strings.Contains(got, "--") {
		t.Fatalf("comment marker survived: %q", got)
	}
	if got != "admin; DROP TABLE users;" {
		t.Fatalf("SearchTerm = %q", got)
	}
}

func TestSearchTerm(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"comment blocks", "term/*hidden*/rest", "termhiddenrest"},
		{"stored procedures", "xp_cmdshell sp_help SP_who", "cmdshell help who"},
		{"quotes recombine into comment", "-'-", ""},
		{"plain term untouched", "alice smith", "alice smith"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SearchTerm(tc.input); got != tc.want {
				t.Fatalf("SearchTerm(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestSearchTermIdempotent(t *testing.T) {
	inputs := []string{
		"-/**/-",
		"/*/**/*/",
		"x--p_cmdshell",
		"admin'; DROP TABLE users; --",
		"alice smith",
		strings.Repeat("'-", 300),
	}
	for _, input := range inputs {
		once := SearchTerm(input)
		if twice := SearchTerm(once); twice != once {
			t.Fatalf("SearchTerm not idempotent on %q: first %q, second %q", input, once, twice)
		}
	}
}

func TestSearchTermReassembledMarkers(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"-/**/-", ""},
		{"x--p_cmdshell", "cmdshell"},
		{"s--p_help", "help"},
	}
	for _, tc := range cases {
		if got := SearchTerm(tc.input); got != tc.want {
			t.Fatalf("SearchTerm(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestSearchTermLengthBound(t *testing.T) {
	long := strings.Repeat("a", 500)
	if got := SearchTerm(long); len(got) != 100 {
		t.Fatalf("expected 100 chars, got %d", len(got))
	}
	// Stripping happens before truncation: quote noise must not eat the budget.
	padded := strings.Repeat("'a", 200)
	if got := SearchTerm(padded); len(got) != 100 {
		t.Fatalf("expected 100 chars after stripping, got %d", len(got))
	}
}
