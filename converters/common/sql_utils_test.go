package common

import (
	"fmt"
	"strings"
	"testing"
)

func TestGenPreparedStmt(t *testing.T) {
	got, err := GenPreparedStmt("t", []string{"id", "name", "score"}, nil)
	if err != nil {
		t.Fatalf("GenPreparedStmt failed: %v", err)
	}
	want := "INSERT INTO t (id,name,score) VALUES (?,?,?)"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestGenPreparedStmtRequiresFields(t *testing.T) {
	if _, err := GenPreparedStmt("", []string{"a"}, nil); err == nil {
		t.Error("expected error for empty table name")
	}
	if _, err := GenPreparedStmt("t", nil, nil); err == nil {
		t.Error("expected error for empty field list")
	}
}

func TestGenBatchInsertStmt(t *testing.T) {
	dollar := func(n int) string { return fmt.Sprintf("$%d", n) }

	tests := []struct {
		name        string
		rows        int
		placeholder PlaceholderFunc
		expected    string
	}{
		{"OneRow", 1, QuestionMark, "INSERT INTO scores (a,b) VALUES (?,?)"},
		{"ThreeRows", 3, QuestionMark, "INSERT INTO scores (a,b) VALUES (?,?),(?,?),(?,?)"},
		{"Numbered", 2, dollar, "INSERT INTO scores (a,b) VALUES ($1,$2),($3,$4)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GenBatchInsertStmt("scores", []string{"a", "b"}, tt.rows, tt.placeholder)
			if err != nil {
				t.Fatalf("GenBatchInsertStmt failed: %v", err)
			}
			if got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}

	if _, err := GenBatchInsertStmt("scores", []string{"a"}, 0, nil); err == nil {
		t.Error("expected error for zero rows")
	}
}

func TestGenPreparedStmtInterpolatesVerbatim(t *testing.T) {
	// Header text is not escaped; this documents the behaviour ValidateIdentifiers guards against.
	got, err := GenPreparedStmt("t", []string{"a) VALUES (1); --"}, nil)
	if err != nil {
		t.Fatalf("GenPreparedStmt failed: %v", err)
	}
	if !strings.Contains(got, "(a) VALUES (1); --)") {
		t.Errorf("expected raw interpolation, got %q", got)
	}
}

func TestValidateIdentifiers(t *testing.T) {
	tests := []struct {
		name    string
		names   []string
		wantErr bool
	}{
		{"Plain", []string{"applicant_id", "first_name", "score2"}, false},
		{"Space", []string{"first name"}, true},
		{"LeadingDigit", []string{"1st"}, true},
		{"Injection", []string{"a); DROP TABLE t; --"}, true},
		{"Keyword", []string{"id", "Order"}, true},
		{"Empty", []string{""}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIdentifiers(tt.names)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateIdentifiers(%q) error = %v, wantErr %v", tt.names, err, tt.wantErr)
			}
		})
	}
}

func TestQuoteIdentifiers(t *testing.T) {
	quote := func(s string) string { return `"` + strings.ReplaceAll(s, `"`, `""`) + `"` }
	got := QuoteIdentifiers([]string{"id", `we"ird`}, quote)
	want := []string{`"id"`, `"we""ird"`}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("at index %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestIsKeyword(t *testing.T) {
	for _, kw := range []string{"select", "SELECT", "Group", "where"} {
		if !IsKeyword(kw) {
			t.Errorf("IsKeyword(%q) = false, want true", kw)
		}
	}
	for _, name := range []string{"applicant_id", "score", "program"} {
		if IsKeyword(name) {
			t.Errorf("IsKeyword(%q) = true, want false", name)
		}
	}
}
