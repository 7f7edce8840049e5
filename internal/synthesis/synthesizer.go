// Package synthesis turns method descriptors into runnable Python snippets.
// Placeholders of the form {name} are substituted from resolved parameters;
// anything left over is filled from a default table so the emitted code never
// contains an unresolved placeholder.
package synthesis

import (
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"

	"github.com/coanalystai/coanalyst/internal/catalog"
)

// Generated is a synthesized, validated code snippet plus its metadata.
type Generated struct {
	Code         string                 `json:"code"`
	Language     string                 `json:"language"`
	MethodID     string                 `json:"method_id"`
	MethodName   string                 `json:"method_name"`
	Libraries    string                 `json:"library_dependencies"`
	Parameters   map[string]interface{} `json:"parameters"`
	TemplateType string                 `json:"template_type"`
}

// Generator synthesizes code from descriptors.
type Generator struct {
	logger     *log.Logger
	dataPath   string
	outputPath string
}

var (
	placeholderRe = regexp.MustCompile(`\{[A-Za-z_][A-Za-z0-9_]*\}`)

	// Advisory patterns; matches are logged, never blocked. Resource limits
	// are enforced separately by the sandbox policy gate.
	dangerousPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)import\s+os`),
		regexp.MustCompile(`(?i)exec\s*\(`),
		regexp.MustCompile(`(?i)eval\s*\(`),
		regexp.MustCompile(`(?i)__import__`),
		regexp.MustCompile(`(?i)subprocess`),
		regexp.MustCompile(`(?i)os\.system`),
		regexp.MustCompile(`(?i)open\s*\(.+["']w["']`),
		regexp.MustCompile(`(?i)os\.environ`),
	}

	// Common template damage the repair pass knows how to undo.
	repairs = []struct{ old, new string }{
		{"‘", "'"},
		{"’", "'"},
		{"“", "\""},
		{"”", "\""},
		{"```python\n", ""},
		{"```\n", ""},
		{"```", ""},
		{",,", ","},
	}
)

// NewGenerator creates a Generator rooted at the given data and output
// directories.
func NewGenerator(dataPath, outputPath string) *Generator {
	return &Generator{
		logger:     log.New(log.Writer(), "[CODEGEN] ", log.LstdFlags),
		dataPath:   dataPath,
		outputPath: outputPath,
	}
}

// Generate synthesizes code for a selected method. Synthesis is
// deterministic: the same descriptor always yields the same snippet.
func (g *Generator) Generate(desc catalog.Descriptor) Generated {
	g.logger.Printf("generating code: %s", desc.Name)

	params := g.prepareParameters(desc)
	code := g.substitute(desc.Template, params)
	code = g.validate(code)
	g.securityScan(code)

	g.logger.Printf("code generated: %d bytes", len(code))
	return Generated{
		Code:         code,
		Language:     "python",
		MethodID:     desc.ID,
		MethodName:   desc.Name,
		Libraries:    desc.Library,
		Parameters:   params,
		TemplateType: desc.TemplateType,
	}
}

func (g *Generator) prepareParameters(desc catalog.Descriptor) map[string]interface{} {
	params := map[string]interface{}{
		"data_path":   g.dataPath + "/sample_data.csv",
		"output_path": g.outputPath,

		"date_column":       "date",
		"value_column":      "sales",
		"group_column":      "group",
		"data_column":       "value",
		"target_variable":   "target",
		"feature_variables": []string{"feature1", "feature2"},
		"features":          []string{"feature1", "feature2"},
		"variables_filter":  "",
		"column":            "column_name",
		"columns":           []string{"column1", "column2"},
		"x_axis":            "x",
		"y_axis":            "y",
		"title":             "analysis result",
		"aggregation":       "sum",
		"n_clusters":        4,
	}
	for k, v := range desc.Parameters {
		params[k] = v
	}
	return params
}

// substitute replaces every known {name} token, then resolves leftovers
// from the default table, falling back to the quoted parameter name.
func (g *Generator) substitute(template string, params map[string]interface{}) string {
	code := template

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		placeholder := "{" + k + "}"
		if strings.Contains(code, placeholder) {
			code = strings.ReplaceAll(code, placeholder, formatValue(params[k]))
		}
	}

	for _, match := range placeholderRe.FindAllString(code, -1) {
		name := match[1 : len(match)-1]
		value := defaultValue(name)
		code = strings.ReplaceAll(code, match, value)
		g.logger.Printf("unresolved placeholder substituted with default: %s -> %s", name, value)
	}

	return code
}

// defaultValue is the last line of defense for template/parameter
// mismatches. Names without an entry become their own quoted literal.
func defaultValue(name string) string {
	defaults := map[string]string{
		"data_path":         "data/sample_data.csv",
		"output_path":       "outputs",
		"column":            "column_name",
		"columns":           "['column1', 'column2']",
		"date_column":       "date",
		"value_column":      "value",
		"group_column":      "group",
		"data_column":       "data",
		"target_variable":   "target",
		"feature_variables": "['feature1', 'feature2']",
		"features":          "['feature1', 'feature2']",
		"x_axis":            "x",
		"y_axis":            "y",
		"title":             "analysis result",
		"aggregation":       "sum",
		"n_clusters":        "4",
	}
	if v, ok := defaults[name]; ok {
		return v
	}
	return "'" + name + "'"
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case []string:
		return pyList(val)
	case []interface{}:
		items := make([]string, 0, len(val))
		for _, item := range val {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return pyList(items)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func pyList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = "'" + strings.ReplaceAll(s, "'", "\\'") + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// validate performs a shallow structural check and attempts a best-effort
// repair when it fails. Repair is heuristic; the sandbox is the real
// arbiter of whether the snippet runs.
func (g *Generator) validate(code string) string {
	if balanced(code) && !needsRepair(code) {
		return code
	}
	g.logger.Printf("structural check failed, attempting repair")
	repaired := code
	for _, r := range repairs {
		repaired = strings.ReplaceAll(repaired, r.old, r.new)
	}
	if !balanced(repaired) {
		g.logger.Printf("repair did not restore balance; emitting as-is")
	}
	return repaired
}

// needsRepair flags artifacts that are syntactically fatal to Python even
// though they do not unbalance anything: smart quotes and markdown fences.
func needsRepair(code string) bool {
	for _, marker := range []string{"‘", "’", "“", "”", "```"} {
		if strings.Contains(code, marker) {
			return true
		}
	}
	return false
}

// balanced reports whether brackets and quotes pair up outside of string
// literals.
func balanced(code string) bool {
	var stack []rune
	var quote rune
	escaped := false
	for _, r := range code {
		if quote != 0 {
			if escaped {
				escaped = false
				continue
			}
			switch r {
			case '\\':
				escaped = true
			case quote:
				quote = 0
			}
			continue
		}
		switch r {
		case '\'', '"':
			quote = r
		case '(', '[', '{':
			stack = append(stack, r)
		case ')', ']', '}':
			if len(stack) == 0 {
				return false
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if (r == ')' && open != '(') || (r == ']' && open != '[') || (r == '}' && open != '{') {
				return false
			}
		}
	}
	return len(stack) == 0 && quote == 0
}

func (g *Generator) securityScan(code string) {
	for _, pattern := range dangerousPatterns {
		if pattern.MatchString(code) {
			g.logger.Printf("potentially dangerous operation detected: %s", pattern.String())
		}
	}
}
