package complexity

import (
	"fmt"
	"strings"
)

// Messages holds the language-specific suggestion phrasing.
type Messages struct {
	Complexity   string
	Nesting      string
	ParseFailure string
	Unused       func(names []string) string
}

var javaScriptMessages = Messages{
	Complexity:   "Consider breaking down complex functions into smaller ones.",
	Nesting:      "High nesting detected. Try using early returns or guard clauses.",
	ParseFailure: "Failed to parse JavaScript code. Please check for syntax errors.",
	Unused: func(names []string) string {
		return fmt.Sprintf("Found %d unused variables: %s", len(names), strings.Join(names, ", "))
	},
}

var pythonMessages = Messages{
	Complexity:   "Python function complexity is high. Consider using refactoring to split logic.",
	Nesting:      "Deep nesting in Python detected. Flatten your structure using list comprehensions or early returns.",
	ParseFailure: "Failed to parse Python code. Make sure it's valid Python 3 syntax.",
	Unused: func(names []string) string {
		return "Unused Python variables: " + strings.Join(names, ", ")
	},
}

// Thresholds are the limits above which suggestions fire.
type Thresholds struct {
	Complexity int
	Nesting    int
}

// Suggest derives suggestions from raw metrics, in the order complexity,
// nesting, unused variables. It returns an empty, non-nil slice when
// nothing fires.
func Suggest(msgs Messages, th Thresholds, complexity, maxDepth int, unused []string) []string {
	out := make([]string, 0, 3)
	if complexity > th.Complexity {
		out = append(out, msgs.Complexity)
	}
	if maxDepth > th.Nesting {
		out = append(out, msgs.Nesting)
	}
	if len(unused) > 0 {
		out = append(out, msgs.Unused(unused))
	}
	return out
}
