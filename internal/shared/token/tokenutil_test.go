package tokenutil

import (
	"strings"
	"testing"
)

func TestCountTokensEmpty(t *testing.T) {
	if got := CountTokens(""); got != 0 {
		t.Errorf("CountTokens(\"\") = %d, want 0", got)
	}
}

func TestCountTokensNonEmpty(t *testing.T) {
	if got := CountTokens("fixed wing surveillance drone"); got <= 0 {
		t.Errorf("CountTokens returned %d, want > 0", got)
	}
}

func TestEstimateFast(t *testing.T) {
	if got := EstimateFast("   \n\t  "); got != 0 {
		t.Errorf("EstimateFast(whitespace) = %d, want 0", got)
	}
	// 4 words, 7 runes: runes/4 = 1 but word count wins.
	if got := EstimateFast("a b c d"); got != 4 {
		t.Errorf("EstimateFast(\"a b c d\") = %d, want 4", got)
	}
	if got := EstimateFast("x"); got != 1 {
		t.Errorf("EstimateFast(\"x\") = %d, want 1", got)
	}
}

func TestTruncateToTokensNoop(t *testing.T) {
	text := "short"
	if got := TruncateToTokens(text, 100); got != text {
		t.Errorf("TruncateToTokens(%q, 100) = %q, want unchanged", text, got)
	}
	if got := TruncateToTokens(text, 0); got != text {
		t.Errorf("TruncateToTokens(%q, 0) = %q, want unchanged for zero budget", text, got)
	}
}

func TestTruncateToTokensCuts(t *testing.T) {
	text := strings.Repeat("payload mass budget ", 200)
	got := TruncateToTokens(text, 5)
	if got == text {
		t.Fatal("long text should have been truncated")
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncated text should end with ellipsis, got %q", got)
	}
	if len(got) >= len(text) {
		t.Errorf("truncated text is not shorter: %d vs %d", len(got), len(text))
	}
}

func TestBoundSections(t *testing.T) {
	long := strings.Repeat("wing loading analysis ", 200)
	sections := []string{"small", long, long}
	bounded := BoundSections(sections, 30)
	if len(bounded) != 3 {
		t.Fatalf("got %d sections, want 3", len(bounded))
	}
	if bounded[0] != "small" {
		t.Errorf("short section should pass through, got %q", bounded[0])
	}
	for i := 1; i < 3; i++ {
		if len(bounded[i]) >= len(long) {
			t.Errorf("section %d was not bounded", i)
		}
	}
	// Zero budget disables bounding.
	same := BoundSections(sections, 0)
	if same[1] != long {
		t.Error("zero budget should leave sections untouched")
	}
}
