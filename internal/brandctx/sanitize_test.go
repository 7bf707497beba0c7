package brandctx

import (
	"strings"
	"testing"
)

func TestSanitizeRemovesNoisyStyles(t *testing.T) {
	text := "Fun, Cartoon-inspired brand with anime energy.\nWe love fresh ingredients."
	got := Sanitize(text, "", "")

	if strings.Contains(strings.ToLower(got.Text), "cartoon") || strings.Contains(strings.ToLower(got.Text), "anime") {
		t.Fatalf("Text still contains style tokens: %q", got.Text)
	}
	if !strings.Contains(got.Text, "We love fresh ingredients.") {
		t.Fatalf("unrelated line lost: %q", got.Text)
	}
	want := []string{"anime", "cartoon"}
	if strings.Join(got.Removed, ",") != strings.Join(want, ",") {
		t.Fatalf("Removed = %v, want %v", got.Removed, want)
	}
}

func TestSanitizeKeepsExplicitlyRequestedToken(t *testing.T) {
	got := Sanitize("Watercolor packaging, cartoon mascot", "soft watercolor look", "")

	if !strings.Contains(got.Text, "Watercolor") {
		t.Fatalf("requested token removed: %q", got.Text)
	}
	if strings.Contains(got.Text, "cartoon") {
		t.Fatalf("unrequested token kept: %q", got.Text)
	}
	if len(got.Removed) != 1 || got.Removed[0] != "cartoon" {
		t.Fatalf("Removed = %v", got.Removed)
	}
}

func TestSanitizeIndonesianAndDiacritics(t *testing.T) {
	got := Sanitize("Gaya KARTUN ceria\nIlustrasí lucu", "", "")
	if got.Text != "Gaya ceria\nlucu" {
		t.Fatalf("Text = %q", got.Text)
	}
	if len(got.Removed) != 2 {
		t.Fatalf("Removed = %v", got.Removed)
	}
}

func TestSanitizeKeepsDiacriticsOutsideRemovedTokens(t *testing.T) {
	got := Sanitize("Café Ñusa, anime anime mascot\nKopi susu khas Café Ñusa\nCafé ilustrasí", "", "")
	want := "Café Ñusa, mascot\nKopi susu khas Café Ñusa\nCafé"
	if got.Text != want {
		t.Fatalf("Text = %q, want %q", got.Text, want)
	}
	if strings.Join(got.Removed, ",") != "anime,ilustrasi" {
		t.Fatalf("Removed = %v", got.Removed)
	}
}

func TestSanitizeDropsEmptiedLines(t *testing.T) {
	got := Sanitize("anime, manga!\nHomemade sambal since 1998", "", "")
	if got.Text != "Homemade sambal since 1998" {
		t.Fatalf("Text = %q", got.Text)
	}
}

func TestSanitizeTruncates(t *testing.T) {
	got := Sanitize(strings.Repeat("premium ", 200), "", "")
	if n := len([]rune(got.Text)); n != MaxRunes {
		t.Fatalf("length = %d, want %d", n, MaxRunes)
	}
	if !strings.HasSuffix(got.Text, TruncationMarker) {
		t.Fatalf("missing marker: %q", got.Text[len(got.Text)-20:])
	}
}

func TestSanitizeEmpty(t *testing.T) {
	if got := Sanitize("   ", "anime", ""); got.Text != "" || got.Removed != nil {
		t.Fatalf("Sanitize(empty) = %+v", got)
	}
}
