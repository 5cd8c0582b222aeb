package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/xelth-com/eckassets/internal/utils"
)

// Suggestions is the three-part assessment of an asset
type Suggestions struct {
	Feasibility               string `json:"feasibility"`
	MaintenancePrediction     string `json:"maintenancePrediction"`
	ReplacementRecommendation string `json:"replacementRecommendation"`
}

// Field identifies one part of Suggestions
type Field int

const (
	FieldFeasibility Field = iota
	FieldMaintenance
	FieldReplacement
)

var fields = []Field{FieldFeasibility, FieldMaintenance, FieldReplacement}

// Fallback texts used when the endpoint gives nothing usable for a field.
const (
	FallbackFeasibility = "Analisis kelayakan tidak tersedia saat ini."
	FallbackMaintenance = "Prediksi pemeliharaan tidak tersedia saat ini."
	FallbackReplacement = "Rekomendasi penggantian tidak tersedia saat ini."
)

// DefaultKeywords are matched case-insensitively by ScanForFields.
var DefaultKeywords = map[Field][]string{
	FieldFeasibility: {"feasibility", "kelayakan", "layak"},
	FieldMaintenance: {"maintenance", "pemeliharaan", "perawatan"},
	FieldReplacement: {"replacement", "penggantian", "ganti"},
}

func (f Field) jsonKey() string {
	switch f {
	case FieldFeasibility:
		return "feasibility"
	case FieldMaintenance:
		return "maintenancePrediction"
	case FieldReplacement:
		return "replacementRecommendation"
	}
	return ""
}

func (f Field) fallback() string {
	switch f {
	case FieldFeasibility:
		return FallbackFeasibility
	case FieldMaintenance:
		return FallbackMaintenance
	case FieldReplacement:
		return FallbackReplacement
	}
	return ""
}

func (s *Suggestions) set(f Field, v string) {
	switch f {
	case FieldFeasibility:
		s.Feasibility = v
	case FieldMaintenance:
		s.MaintenancePrediction = v
	case FieldReplacement:
		s.ReplacementRecommendation = v
	}
}

// Fallback returns Suggestions made only of fallback texts.
func Fallback() Suggestions {
	var s Suggestions
	for _, f := range fields {
		s.set(f, f.fallback())
	}
	return s
}

// TryParseStructured reads the first {...} object in text. Missing, empty or
// falsy fields get their fallback text. ok is false when no object parses.
func TryParseStructured(text string) (Suggestions, bool) {
	obj, found := utils.ExtractJSONObject(utils.SanitizeJSON(text))
	if !found {
		return Suggestions{}, false
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(obj), &raw); err != nil {
		return Suggestions{}, false
	}

	var s Suggestions
	for _, f := range fields {
		v := truthyText(raw[f.jsonKey()])
		if v == "" {
			v = f.fallback()
		}
		s.set(f, v)
	}
	return s, true
}

// truthyText renders a JSON value as text, or "" for null, false, 0, "" and
// empty containers.
func truthyText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case bool:
		if !t {
			return ""
		}
		return "true"
	case float64:
		if t == 0 {
			return ""
		}
		return fmt.Sprint(t)
	case []any:
		if len(t) == 0 {
			return ""
		}
	case map[string]any:
		if len(t) == 0 {
			return ""
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// ScanForFields looks for the first line mentioning one of a field's
// keywords and takes it together with up to two following lines, minus a
// leading "label:" prefix. Fields without a match get their fallback text.
func ScanForFields(text string, keywords map[Field][]string) Suggestions {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lower := make([]string, len(lines))
	for i, l := range lines {
		lower[i] = strings.ToLower(l)
	}

	var s Suggestions
	for _, f := range fields {
		v := ""
		if idx, kw := firstMatch(lower, keywords[f]); idx >= 0 {
			end := idx + 3
			if end > len(lines) {
				end = len(lines)
			}
			v = cleanSnippet(lines[idx:end], kw)
		}
		if v == "" {
			v = f.fallback()
		}
		s.set(f, v)
	}
	return s
}

func firstMatch(lowerLines []string, keywords []string) (int, string) {
	for i, l := range lowerLines {
		for _, kw := range keywords {
			if kw != "" && strings.Contains(l, strings.ToLower(kw)) {
				return i, kw
			}
		}
	}
	return -1, ""
}

// labelPattern is a bare heading such as "**Kondisi Umum**" or "2. Saran".
var labelPattern = regexp.MustCompile(`^[\s*#\d.\-]*[\p{L} ]+\*{0,2}$`)

const maxLabelLength = 40

func cleanSnippet(lines []string, keyword string) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		if t := strings.TrimSpace(l); t != "" {
			parts = append(parts, t)
		}
	}
	joined := strings.Join(parts, " ")

	// "**Feasibility:** text" and "1. Kelayakan: text" both lose their label
	if i := strings.Index(joined, ":"); i >= 0 && isLabel(joined[:i], joined[i+1:], keyword) {
		joined = joined[i+1:]
	}
	return strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(joined), "*#- "))
}

// isLabel reports whether prefix, the text before the first colon, is a
// leading label. Times ("10:30") and URLs ("https://") are never labels.
func isLabel(prefix, rest, keyword string) bool {
	if prefix == "" || len(prefix) > maxLabelLength || len(strings.Fields(prefix)) > 4 {
		return false
	}
	before := strings.TrimRight(prefix, "*")
	if before == "" {
		return false
	}
	if last := before[len(before)-1]; last == '/' || unicode.IsDigit(rune(last)) {
		return false
	}
	after := strings.TrimLeft(rest, "*")
	if after != "" {
		if r, _ := utf8.DecodeRuneInString(after); !unicode.IsSpace(r) {
			return false
		}
	}
	if keyword != "" && strings.Contains(strings.ToLower(prefix), strings.ToLower(keyword)) {
		return true
	}
	return labelPattern.MatchString(prefix)
}

// ParseSuggestions never fails: structured JSON first, then the line scan,
// then fallback texts.
func ParseSuggestions(text string) Suggestions {
	if s, ok := TryParseStructured(text); ok {
		return s
	}
	return ScanForFields(text, DefaultKeywords)
}
