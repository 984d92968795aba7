package cmd

import (
	"strings"
	"testing"
)

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "normal ASCII path unchanged",
			input: "/scenes/level-1.scene",
			want:  "/scenes/level-1.scene",
		},
		{
			name:  "ANSI escape sequence ESC replaced leaving rest intact",
			input: "/path/\x1b[2J/evil",
			want:  "/path/?[2J/evil",
		},
		{
			name:  "null byte replaced",
			input: "/path/\x00null",
			want:  "/path/?null",
		},
		{
			name:  "newline replaced",
			input: "/path/with\nnewline",
			want:  "/path/with?newline",
		},
		{
			name:  "carriage return replaced",
			input: "/path/with\rCR",
			want:  "/path/with?CR",
		},
		{
			name:  "tab replaced",
			input: "/path/with\ttab",
			want:  "/path/with?tab",
		},
		{
			name:  "DEL byte replaced",
			input: "/path/with\x7fDEL",
			want:  "/path/with?DEL",
		},
		{
			name:  "empty string unchanged",
			input: "",
			want:  "",
		},
		{
			name:  "entity name with escape sequence",
			input: "Light\x1b[31m (a1b2)",
			want:  "Light?[31m (a1b2)",
		},
		{
			name:  "non-ASCII entity name unchanged",
			input: "Lumière (c3d4)",
			want:  "Lumière (c3d4)",
		},
		{
			name:  "C1 control replaced",
			input: "Light\u009b31m",
			want:  "Light?31m",
		},
		{
			name:  "bidi override replaced",
			input: "Door\u202eroot",
			want:  "Door?root",
		},
		{
			name:  "multiple control bytes all replaced",
			input: "\x01\x1b[2J\x00",
			want:  "??[2J?",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeText(tt.input)
			if got != tt.want {
				t.Errorf("sanitizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeName(t *testing.T) {
	if got := sanitizeName("Light\x1b (a1)"); got != "Light? (a1)" {
		t.Errorf("sanitizeName = %q", got)
	}

	long := strings.Repeat("é", maxNameRunes+5)
	got := sanitizeName(long)
	if n := len([]rune(got)); n != maxNameRunes {
		t.Errorf("rune length = %d, want %d", n, maxNameRunes)
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("sanitizeName(long) = %q, want trailing ellipsis", got)
	}

	exact := strings.Repeat("a", maxNameRunes)
	if got := sanitizeName(exact); got != exact {
		t.Errorf("name of exactly %d runes was changed", maxNameRunes)
	}
}

func TestTreeCmd_SanitizesNames(t *testing.T) {
	doc := strings.Replace(testDoc, `"name": "Bulb"`, `"name": "Bu\u001b[2Jlb"`, 1)
	m := newMockDocumentIO(map[string]string{testDocPath: doc})

	out, _, err := execute(NewTreeCmd(m), testDocPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "    Bu?[2Jlb (bulb)\n") {
		t.Errorf("stdout = %q, want sanitized bulb name", out)
	}
}
