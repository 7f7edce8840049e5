package core

import (
	"log"
	"regexp"
	"sort"
	"strings"
)

// IntentParser classifies a request into one of the supported analysis
// intents and extracts the entities the planner binds into steps.
type IntentParser struct {
	logger   *log.Logger
	patterns map[string][]*regexp.Regexp
}

// The closed set of intents. Classification scores every intent and picks
// the highest; everything-zero falls back to data_exploration.
var intentPatterns = map[string][]string{
	"data_exploration": {
		`explor`, `overview`, `first look`, `what.*data`, `understand.*data`, `profile`,
	},
	"descriptive_statistics": {
		`descriptive statistic`, `summary statistic`, `\bmean\b`, `\bmedian\b`,
		`standard deviation`, `\baverage\b`,
	},
	"correlation_analysis": {
		`correlat`, `relationship`, `associat`, `how.*related`,
	},
	"trend_analysis": {
		`trend`, `over time`, `time series`, `monthly`, `yearly`, `change.*over`,
	},
	"clustering": {
		`cluster`, `segment`, `group.*similar`, `classif`,
	},
	"regression_analysis": {
		`regression`, `predict`, `forecast`, `linear model`,
	},
	"hypothesis_testing": {
		`t-test`, `t test`, `significan`, `hypothesis`, `difference between`,
	},
	"visualization": {
		`visuali[sz]`, `chart`, `graph`, `plot`,
	},
}

var (
	quotedNameRe    = regexp.MustCompile(`['"` + "`" + `]([A-Za-z_][A-Za-z0-9_ ]*)['"` + "`" + `]`)
	fileNameRe      = regexp.MustCompile(`([A-Za-z0-9_\-.]+\.(?:csv|xlsx?|json))`)
	groupByRe       = regexp.MustCompile(`(?:grouped by|group by|\bper\b)\s+([a-z_][a-z0-9_]*)`)
	dateKeywords    = []string{"date", "time", "year", "month", "timestamp"}
	numericKeywords = []string{"sales", "revenue", "amount", "price", "quantity"}
	urgentKeywords  = []string{"urgent", "asap", "immediately", "right away", "quickly"}
	detailKeywords  = []string{"detailed", "in depth", "thorough", "carefully", "comprehensive"}
)

// NewIntentParser compiles the pattern tables once.
func NewIntentParser() *IntentParser {
	p := &IntentParser{
		logger:   log.New(log.Writer(), "[INTENT] ", log.LstdFlags),
		patterns: map[string][]*regexp.Regexp{},
	}
	for intent, exprs := range intentPatterns {
		for _, expr := range exprs {
			p.patterns[intent] = append(p.patterns[intent], regexp.MustCompile(expr))
		}
	}
	return p
}

// Parse turns raw request text into a structured request.
func (p *IntentParser) Parse(input string) ParsedRequest {
	p.logger.Printf("parsing request: %.60s", input)

	intent := p.classify(input)
	entities := extractEntities(input)
	req := ParsedRequest{
		Input:        input,
		Intent:       intent,
		Entities:     entities,
		DataSource:   identifyDataSource(input),
		Priority:     determinePriority(input),
		AnalysisType: intent.Primary,
	}
	p.logger.Printf("classified as %s (priority %s)", req.AnalysisType, req.Priority)
	return req
}

// classify scores each intent by pattern match count. Ties break on intent
// name so the result is deterministic.
func (p *IntentParser) classify(input string) Intent {
	text := strings.ToLower(input)
	scores := map[string]int{}
	for intent, res := range p.patterns {
		for _, re := range res {
			scores[intent] += len(re.FindAllString(text, -1))
		}
	}

	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	sort.Strings(names)

	primary := "data_exploration"
	best := 0
	for _, name := range names {
		if scores[name] > best {
			best = scores[name]
			primary = name
		}
	}

	var secondary []string
	for _, name := range names {
		if scores[name] > 0 && name != primary {
			secondary = append(secondary, name)
		}
	}
	return Intent{Primary: primary, Secondary: secondary, Scores: scores}
}

func extractEntities(input string) Entities {
	e := Entities{}
	text := strings.ToLower(input)

	for _, m := range quotedNameRe.FindAllStringSubmatch(input, -1) {
		e.Variables = append(e.Variables, m[1])
	}
	for _, m := range fileNameRe.FindAllStringSubmatch(input, -1) {
		e.FileNames = append(e.FileNames, m[1])
	}
	if m := groupByRe.FindStringSubmatch(text); m != nil {
		e.GroupBy = m[1]
	}
	for _, kw := range dateKeywords {
		if strings.Contains(text, kw) {
			e.DateColumns = append(e.DateColumns, kw)
		}
	}
	for _, kw := range numericKeywords {
		if strings.Contains(text, kw) {
			e.NumericColumns = append(e.NumericColumns, kw)
		}
	}
	return e
}

func identifyDataSource(input string) DataSource {
	text := strings.ToLower(input)
	ds := DataSource{Type: "file"}
	switch {
	case strings.Contains(text, ".csv"):
		ds.Format = "csv"
	case strings.Contains(text, ".xlsx"), strings.Contains(text, ".xls"):
		ds.Format = "excel"
	case strings.Contains(text, ".json"):
		ds.Format = "json"
	}
	for _, kw := range []string{"database", " db ", "sql"} {
		if strings.Contains(text, kw) {
			ds.Type = "database"
			break
		}
	}
	return ds
}

func determinePriority(input string) string {
	text := strings.ToLower(input)
	for _, kw := range urgentKeywords {
		if strings.Contains(text, kw) {
			return "high"
		}
	}
	for _, kw := range detailKeywords {
		if strings.Contains(text, kw) {
			return "detailed"
		}
	}
	return "normal"
}
