package template_test

import (
	"testing"

	"github.com/telcoflow/workflowengine/pkg/template"
)

func TestRender_ResolvesDottedPath(t *testing.T) {
	scope := map[string]any{
		"subscriber": "+254700000001",
		"session": map[string]any{
			"data": map[string]any{"step": "1"},
		},
	}

	got := template.Render("step={{session.data.step}}", scope)
	if got != "step=1" {
		t.Fatalf("got %q", got)
	}
}

func TestRender_LeavesUnresolvedIntact(t *testing.T) {
	scope := map[string]any{"subscriber": "+254700000001"}

	got := template.Render("hello {{unknown.path}}", scope)
	if got != "hello {{unknown.path}}" {
		t.Fatalf("got %q", got)
	}
}

func TestRender_LeavesNullIntact(t *testing.T) {
	scope := map[string]any{"x": nil}

	got := template.Render("v={{x}}", scope)
	if got != "v={{x}}" {
		t.Fatalf("got %q", got)
	}
}

func TestRender_Idempotent(t *testing.T) {
	scope := map[string]any{"amount": 150.0, "subscriber": "+254700000001"}
	tmpl := "to={{subscriber}} amt={{amount}} other={{missing}}"

	once := template.Render(tmpl, scope)
	twice := template.Render(once, scope)

	if once != twice {
		t.Fatalf("not idempotent: %q != %q", once, twice)
	}
}

func TestRender_NumberFormatting(t *testing.T) {
	scope := map[string]any{"whole": 100.0, "frac": 12.5}

	if got := template.Render("{{whole}}", scope); got != "100" {
		t.Fatalf("got %q", got)
	}
	if got := template.Render("{{frac}}", scope); got != "12.5" {
		t.Fatalf("got %q", got)
	}
}

func TestRenderMap_RecursesAndPreservesNonStrings(t *testing.T) {
	scope := map[string]any{"name": "alice"}
	in := map[string]any{
		"greeting": "hi {{name}}",
		"count":    3,
		"nested":   map[string]any{"again": "{{name}}!"},
	}

	out := template.RenderMap(in, scope)
	if out["greeting"] != "hi alice" {
		t.Fatalf("got %v", out["greeting"])
	}
	if out["count"] != 3 {
		t.Fatalf("expected non-string preserved, got %v", out["count"])
	}
	nested := out["nested"].(map[string]any)
	if nested["again"] != "alice!" {
		t.Fatalf("got %v", nested["again"])
	}
}

func TestEvaluatePredicate_GreaterThanOrEqual(t *testing.T) {
	// The exact case spec.md calls out: ">=" must not be detected as ">".
	scope := map[string]any{"amount": 100.0}

	if !template.EvaluatePredicate("{{amount}} >= 100", scope) {
		t.Fatal("expected 100 >= 100 to be true")
	}
	if template.EvaluatePredicate("{{amount}} > 100", scope) {
		t.Fatal("expected 100 > 100 to be false")
	}
}

func TestEvaluatePredicate_NumericOrdering(t *testing.T) {
	cases := []struct {
		expr   string
		amount float64
		want   bool
	}{
		{"{{amount}} > 100", 150, true},
		{"{{amount}} > 100", 50, false},
		{"{{amount}} < 100", 50, true},
		{"{{amount}} <= 100", 100, true},
	}
	for _, c := range cases {
		got := template.EvaluatePredicate(c.expr, map[string]any{"amount": c.amount})
		if got != c.want {
			t.Errorf("%s with amount=%v: got %v want %v", c.expr, c.amount, got, c.want)
		}
	}
}

func TestEvaluatePredicate_TextualEquality(t *testing.T) {
	scope := map[string]any{"status": "success"}

	if !template.EvaluatePredicate("{{status}} == success", scope) {
		t.Fatal("expected textual equality to match")
	}
	if template.EvaluatePredicate("{{status}} != success", scope) {
		t.Fatal("expected != to be false on equal operands")
	}
}

func TestEvaluatePredicate_NoOperatorUsesTruthiness(t *testing.T) {
	if !template.EvaluatePredicate("{{flag}}", map[string]any{"flag": true}) {
		t.Fatal("expected true flag to be truthy")
	}
	if template.EvaluatePredicate("{{flag}}", map[string]any{"flag": false}) {
		t.Fatal("expected false flag to not be truthy")
	}
	if !template.EvaluatePredicate("{{missing}}", map[string]any{}) {
		t.Fatal("expected an unresolved placeholder, left intact as non-empty text, to be truthy")
	}
}

func TestEvaluatePredicate_ParseFailureYieldsFalse(t *testing.T) {
	if template.EvaluatePredicate("abc > 1", map[string]any{}) {
		t.Fatal("expected non-numeric ordering comparison to be false")
	}
}

func TestBuildScope_NodeInputTakesPrecedence(t *testing.T) {
	ctx := map[string]any{"amount": 1}
	input := map[string]any{"amount": 2}

	scope := template.BuildScope(ctx, input, nil)
	if scope["amount"] != 2 {
		t.Fatalf("expected node input to win, got %v", scope["amount"])
	}
}
