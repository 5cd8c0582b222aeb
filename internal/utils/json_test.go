package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, SanitizeJSON("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, SanitizeJSON("```\n{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, SanitizeJSON("  {\"a\":1}  "))
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"plain", `{"a":1}`, `{"a":1}`, true},
		{"surrounded", `Here you go: {"a":{"b":2}} hope it helps {"c":3}`, `{"a":{"b":2}}`, true},
		{"brace in string", `{"a":"x}y{"}`, `{"a":"x}y{"}`, true},
		{"escaped quote", `{"a":"say \"}\" now"} tail`, `{"a":"say \"}\" now"}`, true},
		{"unclosed", `{"a":1`, "", false},
		{"none", "no json here", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSONObject(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
