package sandbox

import "strings"

// ErrorInfo classifies a failed execution and carries remediation hints.
type ErrorInfo struct {
	Type        string   `json:"type"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions"`
}

// errorRule maps a stderr substring to an error class. Rules are checked in
// order; the first match wins.
type errorRule struct {
	marker      string
	class       string
	suggestions []string
}

var errorRules = []errorRule{
	{
		marker:      "ModuleNotFoundError",
		class:       "missing_module",
		suggestions: []string{"install the required library"},
	},
	{
		marker:      "FileNotFoundError",
		class:       "missing_file",
		suggestions: []string{"check the data file path"},
	},
	{
		marker:      "KeyError",
		class:       "missing_column",
		suggestions: []string{"check that the referenced column exists in the data"},
	},
	{
		marker:      "ValueError",
		class:       "value_error",
		suggestions: []string{"check the data format and value ranges"},
	},
}

// classifyError turns stderr into a typed ErrorInfo. Unmatched output is
// classified as unknown with the raw message preserved.
func classifyError(stderr string) *ErrorInfo {
	info := &ErrorInfo{
		Type:    "unknown",
		Message: stderr,
	}
	for _, rule := range errorRules {
		if strings.Contains(stderr, rule.marker) {
			info.Type = rule.class
			info.Suggestions = rule.suggestions
			return info
		}
	}
	return info
}

func timeoutError(limit string) *ErrorInfo {
	return &ErrorInfo{
		Type:        "timeout",
		Message:     "execution exceeded the time limit (" + limit + ")",
		Suggestions: []string{"reduce the data size or simplify the analysis step"},
	}
}
