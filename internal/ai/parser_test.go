package ai

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestTryParseStructured(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Suggestions
		ok   bool
	}{
		{
			name: "clean json",
			text: `{"feasibility":"Masih layak","maintenancePrediction":"Servis 3 bulan lagi","replacementRecommendation":"Belum perlu"}`,
			want: Suggestions{"Masih layak", "Servis 3 bulan lagi", "Belum perlu"},
			ok:   true,
		},
		{
			name: "fenced with prose",
			text: "Berikut analisisnya:\n```json\n{\"feasibility\": \"Baik {stabil}\", \"maintenancePrediction\": \"Juni\", \"replacementRecommendation\": \"2028\"}\n```\nSemoga membantu.",
			want: Suggestions{"Baik {stabil}", "Juni", "2028"},
			ok:   true,
		},
		{
			name: "falsy fields fall back",
			text: `{"feasibility":"","maintenancePrediction":null,"replacementRecommendation":false}`,
			want: Fallback(),
			ok:   true,
		},
		{
			name: "missing field falls back",
			text: `{"feasibility":"ok"}`,
			want: Suggestions{"ok", FallbackMaintenance, FallbackReplacement},
			ok:   true,
		},
		{
			name: "non-string value kept as text",
			text: `{"feasibility":["a","b"],"maintenancePrediction":6,"replacementRecommendation":"no"}`,
			want: Suggestions{`["a","b"]`, "6", "no"},
			ok:   true,
		},
		{name: "broken json", text: `{"feasibility": "x",}`, ok: false},
		{name: "no braces", text: "just prose", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TryParseStructured(tt.text)
			assert.Equal(t, tt.ok, ok)
			if !tt.ok {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("TryParseStructured() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScanForFields(t *testing.T) {
	text := `Analisis aset:

**Kelayakan:** Monitor masih berfungsi dengan baik.
Layar tidak memiliki dead pixel.
Warna masih akurat.
Extra line that is not included.

- Maintenance: Bersihkan ventilasi setiap 6 bulan.

Replacement: ganti dalam 2 tahun`

	got := ScanForFields(text, DefaultKeywords)
	want := Suggestions{
		Feasibility:               "Monitor masih berfungsi dengan baik. Layar tidak memiliki dead pixel. Warna masih akurat.",
		MaintenancePrediction:     "Bersihkan ventilasi setiap 6 bulan. Replacement: ganti dalam 2 tahun",
		ReplacementRecommendation: "ganti dalam 2 tahun",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ScanForFields() mismatch (-want +got):\n%s", diff)
	}
}

func TestScanForFieldsKeepsInlineColons(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Suggestions
	}{
		{
			name: "time of day",
			text: "Maintenance due at 10:30 next Monday.",
			want: Suggestions{
				Feasibility:               FallbackFeasibility,
				MaintenancePrediction:     "Maintenance due at 10:30 next Monday.",
				ReplacementRecommendation: FallbackReplacement,
			},
		},
		{
			name: "url",
			text: "Feasibility see https://example.com/x for details",
			want: Suggestions{
				Feasibility:               "Feasibility see https://example.com/x for details",
				MaintenancePrediction:     FallbackMaintenance,
				ReplacementRecommendation: FallbackReplacement,
			},
		},
		{
			name: "plain heading",
			text: "Catatan: layak dipakai dua tahun lagi",
			want: Suggestions{
				Feasibility:               "layak dipakai dua tahun lagi",
				MaintenancePrediction:     FallbackMaintenance,
				ReplacementRecommendation: FallbackReplacement,
			},
		},
		{
			name: "punctuated prefix",
			text: "Harga (Rp): layak untuk dipertahankan",
			want: Suggestions{
				Feasibility:               "Harga (Rp): layak untuk dipertahankan",
				MaintenancePrediction:     FallbackMaintenance,
				ReplacementRecommendation: FallbackReplacement,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ScanForFields(tt.text, DefaultKeywords)); diff != "" {
				t.Errorf("ScanForFields() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScanForFieldsCaseInsensitive(t *testing.T) {
	got := ScanForFields("FEASIBILITY looks fine", DefaultKeywords)
	assert.Equal(t, "FEASIBILITY looks fine", got.Feasibility)
	assert.Equal(t, FallbackMaintenance, got.MaintenancePrediction)
	assert.Equal(t, FallbackReplacement, got.ReplacementRecommendation)
}

func TestParseSuggestionsNeverEmpty(t *testing.T) {
	inputs := []string{
		"",
		"The weather is nice today.",
		"{not json at all",
		"}{",
		"```json\n```",
		"\n\n\n",
	}
	for _, in := range inputs {
		got := ParseSuggestions(in)
		assert.NotEmpty(t, got.Feasibility, "input %q", in)
		assert.NotEmpty(t, got.MaintenancePrediction, "input %q", in)
		assert.NotEmpty(t, got.ReplacementRecommendation, "input %q", in)
	}

	assert.Equal(t, Fallback(), ParseSuggestions("The weather is nice today."))
}

func TestParseSuggestionsPrefersJSON(t *testing.T) {
	got := ParseSuggestions("Feasibility: from prose\n" + `{"feasibility":"from json","maintenancePrediction":"m","replacementRecommendation":"r"}`)
	assert.Equal(t, "from json", got.Feasibility)
}
