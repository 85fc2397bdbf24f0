package instruction

import (
	"regexp"
	"strings"
	"testing"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string
		matched bool
	}{
		{"simple instruction", "{{draw a cat}}", "draw a cat", true},
		{"whitespace trimmed", "{{  draw a cat  }}", "draw a cat", true},
		{"multiline instruction", "{{write a haiku\nabout autumn}}", "write a haiku\nabout autumn", true},
		{"prefix text rejected", "note: {{hi}}", "", false},
		{"suffix text rejected", "{{hi}} trailing", "", false},
		{"empty instruction", "{{}}", "", true},
		{"plain text", "just a note", "", false},
		{"empty text", "", "", false},
		{"unclosed marker", "{{hi", "", false},
		{"unopened marker", "hi}}", "", false},
		// Adjacent markers: the anchors force the capture across both
		// pairs, so the inner tokens become part of the instruction.
		{"adjacent markers", "{{a}}{{b}}", "a}}{{b", true},
		{"processing text rejected", "{{draw a cat!!Processing!!", "", false},
		{"done text rejected", "{{draw a cat!! Done !!", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, matched := Extract(tt.text)
			if matched != tt.matched {
				t.Fatalf("Extract(%q) matched = %v, want %v", tt.text, matched, tt.matched)
			}
			if got != tt.want {
				t.Errorf("Extract(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestMarkProcessing(t *testing.T) {
	got := MarkProcessing("{{draw a cat}}")
	want := "{{draw a cat!!Processing!!"
	if got != want {
		t.Errorf("MarkProcessing = %q, want %q", got, want)
	}
}

func TestMarkProcessingNeverRematches(t *testing.T) {
	texts := []string{
		"{{draw a cat}}",
		"{{a}}{{b}}",
		"{{multi\nline}}",
	}
	for _, text := range texts {
		marked := MarkProcessing(text)
		if _, matched := Extract(marked); matched {
			t.Errorf("Extract(MarkProcessing(%q)) matched, marked text = %q", text, marked)
		}
		// Applying the transform again must not resurrect the marker either
		if _, matched := Extract(MarkProcessing(marked)); matched {
			t.Errorf("double MarkProcessing re-matched for %q", text)
		}
	}
}

func TestMarkDone(t *testing.T) {
	processing := MarkProcessing("{{draw a cat}}")
	done := MarkDone(processing)
	want := "{{draw a cat!! Done !!"
	if done != want {
		t.Errorf("MarkDone = %q, want %q", done, want)
	}
	if _, matched := Extract(done); matched {
		t.Errorf("done text %q still matches the marker pattern", done)
	}
}

func TestIsStuck(t *testing.T) {
	if !IsStuck(MarkProcessing("{{draw a cat}}")) {
		t.Error("processing text should be stuck")
	}
	if IsStuck(MarkDone(MarkProcessing("{{draw a cat}}"))) {
		t.Error("done text should not be stuck")
	}
	if IsStuck("{{draw a cat}}") {
		t.Error("unprocessed text should not be stuck")
	}
}

func TestRandomNoteColor(t *testing.T) {
	pattern := regexp.MustCompile(`^#[0-9a-f]{6}CC$`)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		color := RandomNoteColor()
		if !pattern.MatchString(color) {
			t.Fatalf("RandomNoteColor() = %q, does not match %v", color, pattern)
		}
		seen[color] = true
	}
	// 100 draws from 16.7M values colliding into a handful would mean a
	// broken generator
	if len(seen) < 50 {
		t.Errorf("expected varied colors, got %d distinct in 100 draws", len(seen))
	}
	// RGB digits are lowercase; only the alpha suffix is uppercase
	color := RandomNoteColor()
	if rgb := color[1:7]; rgb != strings.ToLower(rgb) {
		t.Errorf("RGB channels should be lowercase hex, got %q", color)
	}
}
