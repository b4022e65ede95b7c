package extractor

import (
	"image"
	"testing"

	"github.com/ledongthuc/pdf"
)

func TestParsePDFDate(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"D:20250415093000", "2025-04-15T09:30:00"},
		{"D:20250415093000-05'00'", "2025-04-15T09:30:00"},
		{"D:20250415", "2025-04-15T00:00:00"},
		{"20250415093000", "2025-04-15T09:30:00"},
	}

	for _, tc := range cases {
		got := parsePDFDate(tc.input)
		if got == nil {
			t.Errorf("parsePDFDate(%q) = nil", tc.input)
			continue
		}
		if formatted := got.Format("2006-01-02T15:04:05"); formatted != tc.want {
			t.Errorf("parsePDFDate(%q) = %s, want %s", tc.input, formatted, tc.want)
		}
	}

	for _, input := range []string{"", "D:", "not a date", "D:2025"} {
		if got := parsePDFDate(input); got != nil {
			t.Errorf("parsePDFDate(%q) = %v, want nil", input, got)
		}
	}
}

func TestAssembleWordsMergesAdjacentRuns(t *testing.T) {
	// "Tot" and "al" rendered as two runs with no gap belong to one word.
	runs := []pdf.Text{
		{S: "Tot", X: 100, Y: 700, W: 18, Font: "Helvetica", FontSize: 10},
		{S: "al", X: 118, Y: 700, W: 12, Font: "Helvetica", FontSize: 10},
		{S: "income", X: 145, Y: 700, W: 40, Font: "Helvetica", FontSize: 10},
	}

	words := assembleWords(runs)
	if len(words) != 2 {
		t.Fatalf("expected 2 words, got %d: %+v", len(words), words)
	}
	if words[0].Text != "Total" {
		t.Errorf("adjacent runs not merged: %q", words[0].Text)
	}
	if words[1].Text != "income" {
		t.Errorf("gap-separated run not split: %q", words[1].Text)
	}
	if words[0].X != 100 || words[0].Width != 30 {
		t.Errorf("merged word geometry wrong: %+v", words[0])
	}
}

func TestAssembleWordsSeparatesLines(t *testing.T) {
	runs := []pdf.Text{
		{S: "below", X: 100, Y: 650, W: 30, Font: "Helvetica", FontSize: 10},
		{S: "above", X: 100, Y: 700, W: 30, Font: "Helvetica", FontSize: 10},
	}

	words := assembleWords(runs)
	if len(words) != 2 {
		t.Fatalf("expected 2 words, got %d", len(words))
	}
	// Reading order is top of page first.
	if words[0].Text != "above" || words[1].Text != "below" {
		t.Errorf("wrong reading order: %+v", words)
	}
}

func TestAssembleWordsSplitsOnWhitespaceRun(t *testing.T) {
	runs := []pdf.Text{
		{S: "one", X: 100, Y: 700, W: 20, Font: "Helvetica", FontSize: 10},
		{S: " ", X: 120, Y: 700, W: 3, Font: "Helvetica", FontSize: 10},
		{S: "two", X: 123, Y: 700, W: 20, Font: "Helvetica", FontSize: 10},
	}

	words := assembleWords(runs)
	if len(words) != 2 || words[0].Text != "one" || words[1].Text != "two" {
		t.Errorf("whitespace run must split words: %+v", words)
	}
}

func TestAssembleWordsEmpty(t *testing.T) {
	if words := assembleWords(nil); words != nil {
		t.Errorf("expected nil for no runs, got %+v", words)
	}
}

func TestImageFromSamplesGray(t *testing.T) {
	data := []byte{0, 64, 128, 192, 255, 32}

	img := imageFromSamples(data, 3, 2, "DeviceGray")
	if img == nil {
		t.Fatal("expected an image from complete gray samples")
	}

	gray, ok := img.(*image.Gray)
	if !ok {
		t.Fatalf("expected *image.Gray, got %T", img)
	}
	if gray.Bounds().Dx() != 3 || gray.Bounds().Dy() != 2 {
		t.Errorf("unexpected bounds: %v", gray.Bounds())
	}
	if gray.GrayAt(2, 1).Y != 32 {
		t.Errorf("sample (2,1) = %d, want 32", gray.GrayAt(2, 1).Y)
	}
}

func TestImageFromSamplesRGB(t *testing.T) {
	// One red pixel, one green pixel.
	data := []byte{255, 0, 0, 0, 255, 0}

	img := imageFromSamples(data, 2, 1, "DeviceRGB")
	if img == nil {
		t.Fatal("expected an image from complete RGB samples")
	}

	r, g, b, _ := img.At(1, 0).RGBA()
	if r != 0 || g != 0xffff || b != 0 {
		t.Errorf("pixel (1,0) = (%d,%d,%d), want pure green", r, g, b)
	}
}

func TestImageFromSamplesRejectsBadInput(t *testing.T) {
	if img := imageFromSamples([]byte{1, 2}, 3, 2, "DeviceGray"); img != nil {
		t.Error("truncated sample data must be rejected")
	}
	if img := imageFromSamples([]byte{1, 2, 3}, 1, 1, "DeviceCMYK"); img != nil {
		t.Error("unsupported color space must be rejected")
	}
	if img := imageFromSamples(nil, 0, 0, "DeviceGray"); img != nil {
		t.Error("zero dimensions must be rejected")
	}
}
