// ABOUTME: Tests for classification models
// ABOUTME: Covers fallback construction and block title extraction
package models

import "testing"

func TestFallbackClassification(t *testing.T) {
	result := FallbackClassification("мне тяжело сегодня")

	if len(result.Parts) != 1 {
		t.Fatalf("expected 1 part, got %d", len(result.Parts))
	}

	part := result.Parts[0]
	if part.Text != "мне тяжело сегодня" {
		t.Errorf("Text = %q, want original message", part.Text)
	}
	if part.Emotion != "neutral" {
		t.Errorf("Emotion = %q, want neutral", part.Emotion)
	}
	if part.Importance != 0 {
		t.Errorf("Importance = %d, want 0", part.Importance)
	}
	if len(part.Blocks) != 0 {
		t.Errorf("Blocks = %v, want empty", part.Blocks)
	}
}

func TestBlockTitles_DedupAcrossParts(t *testing.T) {
	result := ClassificationResult{
		Parts: []Part{
			{Text: "a", Blocks: []string{"семья", "работа"}},
			{Text: "b", Blocks: []string{"работа", "состояния"}},
			{Text: "c", Blocks: []string{""}},
		},
	}

	titles := result.BlockTitles()
	want := []string{"семья", "работа", "состояния"}
	if len(titles) != len(want) {
		t.Fatalf("got %v, want %v", titles, want)
	}
	for i := range want {
		if titles[i] != want[i] {
			t.Errorf("titles[%d] = %q, want %q", i, titles[i], want[i])
		}
	}
}

func TestBlockTitles_NoBlocks(t *testing.T) {
	result := FallbackClassification("anything")
	if titles := result.BlockTitles(); len(titles) != 0 {
		t.Errorf("expected no titles, got %v", titles)
	}
}
