package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutrisense-server-go/internal/platform/errors"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "bare object",
			text: `{"verdict":"safe"}`,
			want: `{"verdict":"safe"}`,
		},
		{
			name: "json fence",
			text: "```json\n{\"verdict\":\"safe\"}\n```",
			want: `{"verdict":"safe"}`,
		},
		{
			name: "plain fence",
			text: "```\n{\"verdict\":\"safe\"}\n```",
			want: `{"verdict":"safe"}`,
		},
		{
			name: "surrounding prose",
			text: "Here is my assessment:\n{\"verdict\":\"caution\"}\nLet me know if you need more.",
			want: `{"verdict":"caution"}`,
		},
		{
			name: "braces inside strings",
			text: `noise {"summary":"watch for {hidden} sugars"} noise`,
			want: `{"summary":"watch for {hidden} sugars"}`,
		},
		{
			name: "nested objects",
			text: `x {"a":{"b":{"c":1}}} y`,
			want: `{"a":{"b":{"c":1}}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestExtractJSON_NoObject(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"plain prose", "I could not analyze this product."},
		{"unbalanced", `{"verdict":"safe"`},
		{"empty", ""},
		{"array only", `[1,2,3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractJSON(tt.text)
			require.Error(t, err)
			assert.True(t, errors.IsKind(err, errors.KindParse))
		})
	}
}
