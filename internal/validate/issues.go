package validate

import (
	"errors"
	"strings"
)

// Issue is a single violated rule: the JSON Pointer of the offending instance
// location and a human-readable reason.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// String renders "<path-or-(root)> <message>".
func (it Issue) String() string {
	p := it.Path
	if p == "" {
		p = "(root)"
	}
	return p + " " + it.Message
}

// Issues is a collection of validation issues that implements error.
type Issues []Issue

// Error joins every issue with "; " so an LLM caller sees all of them at once.
func (iss Issues) Error() string {
	return strings.Join(iss.Strings(), "; ")
}

// Strings renders each issue with Issue.String.
func (iss Issues) Strings() []string {
	out := make([]string, len(iss))
	for i, it := range iss {
		out[i] = it.String()
	}
	return out
}

// AsIssues extracts Issues from an error using errors.As.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}
