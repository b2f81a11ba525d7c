package complexity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggest(t *testing.T) {
	js := JavaScriptProfile()
	py := PythonProfile()

	tests := []struct {
		name       string
		profile    Profile
		complexity int
		depth      int
		unused     []string
		want       []string
	}{
		{
			name:       "nothing fires",
			profile:    js,
			complexity: 10,
			depth:      4,
			want:       []string{},
		},
		{
			name:       "javascript all triggers in order",
			profile:    js,
			complexity: 11,
			depth:      5,
			unused:     []string{"a", "b"},
			want: []string{
				"Consider breaking down complex functions into smaller ones.",
				"High nesting detected. Try using early returns or guard clauses.",
				"Found 2 unused variables: a, b",
			},
		},
		{
			name:       "python nesting threshold is five",
			profile:    py,
			complexity: 1,
			depth:      5,
			want:       []string{},
		},
		{
			name:       "python all triggers in order",
			profile:    py,
			complexity: 12,
			depth:      6,
			unused:     []string{"x"},
			want: []string{
				"Python function complexity is high. Consider using refactoring to split logic.",
				"Deep nesting in Python detected. Flatten your structure using list comprehensions or early returns.",
				"Unused Python variables: x",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := Thresholds{Complexity: DefaultComplexityThreshold, Nesting: tt.profile.NestingThreshold}
			got := Suggest(tt.profile.Messages, th, tt.complexity, tt.depth, tt.unused)
			assert.Equal(t, tt.want, got)
		})
	}
}
