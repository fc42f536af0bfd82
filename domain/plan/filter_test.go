package plan

import (
	"testing"
)

func TestParseFilter_Valid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"symbolic equality", `TUMOR_STAGE == "Stage IV"`},
		{"word equality", `TUMOR_STAGE is "Stage IV"`},
		{"negation", `TP53_Mutation is not 1`},
		{"greater than", `OS_MONTHS greater than 12`},
		{"symbolic comparison", `OS_MONTHS >= 6`},
		{"set membership", `TUMOR_STAGE in {Stage I, Stage II}`},
		{"word membership", `TUMOR_STAGE is not in {Stage III, Stage IV}`},
		{"conjunction", `KRAS_mutation_status == 1 and OS_MONTHS > 6`},
		{"disjunction with parens", `(TUMOR_STAGE == "Stage I" or TUMOR_STAGE == "Stage II") and TP53_Mutation == 0`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := ParseFilter(tt.input)
			if err != nil {
				t.Fatalf("ParseFilter(%q) returned error: %v", tt.input, err)
			}
			if expr == nil {
				t.Fatalf("ParseFilter(%q) returned nil expression", tt.input)
			}
		})
	}
}

func TestParseFilter_Syntax_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing value", `TUMOR_STAGE ==`},
		{"missing operator", `TUMOR_STAGE "Stage IV"`},
		{"unterminated set", `TUMOR_STAGE in {Stage I, Stage II`},
		{"empty set", `TUMOR_STAGE in {}`},
		{"unbalanced parens", `(OS_MONTHS > 6`},
		{"trailing garbage", `OS_MONTHS > 6 extra`},
		{"bare and", `and OS_MONTHS > 6`},
		{"dangling not", `TUMOR_STAGE not "Stage I"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseFilter(tt.input); err == nil {
				t.Fatalf("ParseFilter(%q) should have failed", tt.input)
			}
		})
	}
}

func TestComparison_Eval(t *testing.T) {
	row := map[string]string{
		"TUMOR_STAGE": "Stage IV",
		"OS_MONTHS":   "18.5",
		"TP53":        "1",
	}
	get := func(col string) (string, bool) {
		v, ok := row[col]
		return v, ok
	}

	tests := []struct {
		expr string
		want bool
	}{
		{`TUMOR_STAGE == "Stage IV"`, true},
		{`TUMOR_STAGE != "Stage IV"`, false},
		{`TUMOR_STAGE in {Stage III, Stage IV}`, true},
		{`TUMOR_STAGE not in {Stage III, Stage IV}`, false},
		{`OS_MONTHS > 12`, true},
		{`OS_MONTHS less than 12`, false},
		{`OS_MONTHS >= 18.5`, true},
		{`TP53 == 1.0`, true}, // numeric-aware equality
		{`TP53 == 1 and OS_MONTHS > 12`, true},
		{`TP53 == 0 or OS_MONTHS > 12`, true},
		{`TP53 == 0 and OS_MONTHS > 12`, false},
		{`MISSING_COL == 1`, false}, // absent column never matches
		{`TUMOR_STAGE > 5`, false},  // ordering on non-numeric never matches
	}
	for _, tt := range tests {
		expr, err := ParseFilter(tt.expr)
		if err != nil {
			t.Fatalf("ParseFilter(%q): %v", tt.expr, err)
		}
		if got := expr.Eval(get); got != tt.want {
			t.Errorf("Eval(%q) = %v, want %v", tt.expr, got, tt.want)
		}
	}
}

func TestParseCondition_SingleComparisonOnly(t *testing.T) {
	if _, err := ParseCondition(`KRAS == 1`); err != nil {
		t.Fatalf("single comparison should parse: %v", err)
	}
	if _, err := ParseCondition(`KRAS == 1 and TP53 == 0`); err == nil {
		t.Fatal("compound condition should be rejected")
	}
}

func TestComparison_String_RoundTrip(t *testing.T) {
	inputs := []string{
		`TUMOR_STAGE == "Stage IV"`,
		`OS_MONTHS > 12`,
		`TUMOR_STAGE in {Stage I, Stage II}`,
	}
	for _, input := range inputs {
		expr, err := ParseFilter(input)
		if err != nil {
			t.Fatalf("ParseFilter(%q): %v", input, err)
		}
		again, err := ParseFilter(expr.String())
		if err != nil {
			t.Fatalf("re-parse of %q failed: %v", expr.String(), err)
		}
		if again.String() != expr.String() {
			t.Errorf("render not stable: %q vs %q", expr.String(), again.String())
		}
	}
}

func TestComparisons_Walk(t *testing.T) {
	expr, err := ParseFilter(`(A == 1 or B == 2) and C > 3`)
	if err != nil {
		t.Fatal(err)
	}
	cmps := Comparisons(expr)
	if len(cmps) != 3 {
		t.Fatalf("expected 3 leaf comparisons, got %d", len(cmps))
	}
	if cmps[0].Column != "A" || cmps[1].Column != "B" || cmps[2].Column != "C" {
		t.Errorf("unexpected walk order: %v %v %v", cmps[0].Column, cmps[1].Column, cmps[2].Column)
	}
}
