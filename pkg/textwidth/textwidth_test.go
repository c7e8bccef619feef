package textwidth

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestWidthOf(t *testing.T) {
	cases := []struct {
		r    rune
		want int
	}{
		{'A', 1},
		{'~', 1},
		{0x7f, 0},
		{0x0e, 0},
		{0x0f, 0},
		{0x0300, 0},
		{'あ', 2},
		{'測', 2},
		{'한', 2},
		{0xff01, 2},
		{0xff61, 1},
		{0x1f600, 2},
		{0x20000, 2},
		{0x10fffd, 1},
		{0x10fffe, 1},
		{utf8.MaxRune, 1},
	}

	for _, c := range cases {
		if got := WidthOf(c.r); got != c.want {
			t.Errorf("WidthOf(%U) = %d, want %d", c.r, got, c.want)
		}
	}
}

func TestWidthOfRange(t *testing.T) {
	for r := rune(0); r <= utf8.MaxRune; r += 97 {
		w := WidthOf(r)
		if w < 0 || w > 2 {
			t.Fatalf("WidthOf(%U) = %d, outside 0..2", r, w)
		}
	}
}

func TestBreakpointsSorted(t *testing.T) {
	for i := 1; i < len(widths); i++ {
		if widths[i-1].upper >= widths[i].upper {
			t.Fatalf("breakpoint %d (%d) not above %d", i, widths[i].upper, widths[i-1].upper)
		}
	}
}

func TestColumnWidth(t *testing.T) {
	cases := []struct {
		s    string
		want int
	}{
		{"", 0},
		{"ABC", 3},
		{"測試", 4},
		{"Aあ", 3},
		{"e\u0301", 1},
		{"\x0e\x0f", 0},
	}
	for _, c := range cases {
		if got := ColumnWidth(c.s); got != c.want {
			t.Errorf("ColumnWidth(%q) = %d, want %d", c.s, got, c.want)
		}
	}
}

var truncateInputs = []string{
	"",
	"ABC",
	"測試",
	"Aあいうえおかきくけこさしすせそ",
	"ヒバナ -Reloaded-",
	"混乱する世界の中でも君は変わらないでいて",
	"ウルトラシンクロニシティ",
	"Λeternal(ラエターナル)",
	"Xevel",
	"A\u0301B\u0301C\u0301",
}

func TestTruncateWithinBudget(t *testing.T) {
	for _, s := range truncateInputs {
		for n := 0; n <= 30; n++ {
			got := Truncate(s, n)
			if w := ColumnWidth(got); w > n {
				t.Errorf("ColumnWidth(Truncate(%q, %d)) = %d", s, n, w)
			}
			if !strings.HasPrefix(s, got) {
				t.Errorf("Truncate(%q, %d) = %q is not a prefix", s, n, got)
			}
			if again := Truncate(got, n); again != got {
				t.Errorf("Truncate not idempotent for %q/%d: %q then %q", s, n, got, again)
			}
			if ColumnWidth(s) <= n && n > 0 && got != s {
				t.Errorf("Truncate(%q, %d) = %q, want unchanged", s, n, got)
			}
		}
	}
}

func TestTruncateEdges(t *testing.T) {
	if got := Truncate("", 10); got != "" {
		t.Errorf("Truncate(\"\", 10) = %q", got)
	}
	if got := Truncate("ABC", 0); got != "" {
		t.Errorf("Truncate(ABC, 0) = %q", got)
	}
	if got := Truncate("ABC", -3); got != "" {
		t.Errorf("Truncate(ABC, -3) = %q", got)
	}
	// The wide rune overflows the budget; nothing after it is kept even though 'B' would fit.
	if got := Truncate("AA測B", 3); got != "AA" {
		t.Errorf("Truncate(AA測B, 3) = %q, want AA", got)
	}
	if got := Truncate("測試", 3); got != "測" {
		t.Errorf("Truncate(測試, 3) = %q, want 測", got)
	}
}

func TestFit(t *testing.T) {
	title := strings.Repeat("測", 12) + "A"
	if ColumnWidth(title) != 25 {
		t.Fatalf("fixture width = %d", ColumnWidth(title))
	}

	got := Fit(title, 20, 19, "...")
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("Fit(%q) = %q, want ellipsis", title, got)
	}
	body := strings.TrimSuffix(got, "...")
	if ColumnWidth(body) > 19 {
		t.Errorf("truncated body is %d columns", ColumnWidth(body))
	}
	if ColumnWidth(got) > 22 {
		t.Errorf("fitted title is %d columns", ColumnWidth(got))
	}

	// Exactly at the threshold is left alone.
	exact := strings.Repeat("a", 20)
	if got := Fit(exact, 20, 19, "..."); got != exact {
		t.Errorf("Fit(20 columns) = %q", got)
	}
	if got := Fit(exact+"b", 20, 19, "..."); got != strings.Repeat("a", 19)+"..." {
		t.Errorf("Fit(21 columns) = %q", got)
	}
}
