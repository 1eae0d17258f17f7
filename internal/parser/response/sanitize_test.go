package response_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rezonia/tally-connector/internal/parser/response"
)

func TestStripThousandsSeparators(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"74,900.00", "74900.00"},
		{"1,23,456.78", "123456.78"},
		{`{"a": 1, "b": 2}`, `{"a": 1, "b": 2}`},
		{"[1,2]", "[12]"},
		{"no commas", "no commas"},
		{",1,", ",1,"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, response.StripThousandsSeparators(tt.in))
		})
	}
}

func TestObjectSpan(t *testing.T) {
	span, ok := response.ObjectSpan(`noise {"a":{"b":1}} more } end`)
	assert.True(t, ok)
	assert.Equal(t, `{"a":{"b":1}} more }`, span)

	_, ok = response.ObjectSpan("} before {")
	assert.False(t, ok)

	_, ok = response.ObjectSpan("plain text")
	assert.False(t, ok)
}

func TestListSpan(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"plain list", `result: [{"a":1}] thanks`, `[{"a":1}]`, true},
		{"braces in prose before list", `data {as requested}: [{"a":1}]`, `[{"a":1}]`, true},
		{"items array inside object", `{"items":[{"a":1}]}`, "", false},
		{"bracket inside string of object", `{"note":"[x]"} [{"a":1}]`, `[{"a":1}]`, true},
		{"no closing bracket", `[{"a":1}`, "", false},
		{"no bracket", "plain text", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			span, ok := response.ListSpan(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, span)
		})
	}
}
