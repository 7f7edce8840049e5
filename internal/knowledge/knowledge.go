// Package knowledge loads the JSON knowledge base (analysis methods, data
// processing recipes, interpretation guidelines, worked examples) and serves
// retrieval queries for the planner. Records are additionally indexed into an
// in-memory bleve index for tag and free-text search.
package knowledge

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/blevesearch/bleve"
)

// Record is one knowledge-base entry. All four categories share the shape;
// fields not used by a category stay empty.
type Record struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
	GuidelineID string   `json:"interpretation_guideline_id,omitempty"`
}

// Summary describes what a search returned.
type Summary struct {
	PrimaryIntent   string `json:"primary_intent"`
	MethodsFound    int    `json:"methods_found"`
	ProcessingFound int    `json:"processing_found"`
	GuidelinesFound int    `json:"guidelines_found"`
	ExamplesFound   int    `json:"examples_found"`
}

// Set is the retrieval result handed to the planner.
type Set struct {
	Methods    []Record `json:"analysis_methods"`
	Processing []Record `json:"data_processing"`
	Guidelines []Record `json:"interpretation_guidelines"`
	Examples   []Record `json:"analysis_examples"`
	Summary    Summary  `json:"search_summary"`
}

// Query drives a knowledge search.
type Query struct {
	Primary        string
	Secondary      []string
	HasDateColumns bool
}

var categoryFiles = []string{
	"analysis_methods",
	"data_processing",
	"interpretation_guidelines",
	"analysis_examples",
}

var intentToMethods = map[string][]string{
	"data_exploration":       {"desc_stats_summary"},
	"descriptive_statistics": {"desc_stats_summary"},
	"correlation_analysis":   {"correlation_analysis"},
	"trend_analysis":         {"desc_stats_summary", "linear_regression"},
	"clustering":             {"kmeans_clustering"},
	"regression_analysis":    {"linear_regression"},
	"hypothesis_testing":     {"t_test_independent"},
	"visualization":          {"correlation_analysis"},
}

var intentToTags = map[string][]string{
	"data_exploration":       {"exploration"},
	"descriptive_statistics": {"descriptive statistics"},
	"correlation_analysis":   {"correlation"},
	"trend_analysis":         {"time series"},
	"clustering":             {"clustering", "machine learning"},
	"regression_analysis":    {"regression", "machine learning"},
	"hypothesis_testing":     {"inferential statistics", "hypothesis testing"},
	"visualization":          {"visualization"},
}

var intentToExamples = map[string][]string{
	"trend_analysis":       {"sales_trend_analysis"},
	"clustering":           {"customer_segmentation"},
	"correlation_analysis": {"correlation_analysis_example"},
	"data_exploration":     {"data_exploration"},
}

type docRef struct {
	category string
	position int
}

// Base holds the loaded knowledge base and its search index.
type Base struct {
	logger     *log.Logger
	categories map[string][]Record
	index      bleve.Index
	docs       map[string]docRef
}

// Load reads the knowledge-base directory. Missing category files degrade to
// empty sets with a warning; only an unusable index is a hard error.
func Load(dir string) (*Base, error) {
	b := &Base{
		logger:     log.New(log.Writer(), "[KNOWLEDGE] ", log.LstdFlags),
		categories: map[string][]Record{},
		docs:       map[string]docRef{},
	}

	for _, category := range categoryFiles {
		path := filepath.Join(dir, category+".json")
		records, err := loadRecords(path)
		if err != nil {
			if os.IsNotExist(err) {
				b.logger.Printf("%s.json not found, category left empty", category)
				b.categories[category] = nil
				continue
			}
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		b.categories[category] = records
	}

	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("knowledge index: %w", err)
	}
	b.index = index

	for category, records := range b.categories {
		for i, rec := range records {
			docID := category + "/" + rec.ID
			b.docs[docID] = docRef{category: category, position: i}
			doc := map[string]interface{}{
				"name":        rec.Name,
				"description": rec.Description,
				"tags":        strings.Join(rec.Tags, " "),
			}
			if err := index.Index(docID, doc); err != nil {
				return nil, fmt.Errorf("index %s: %w", docID, err)
			}
		}
	}

	b.logger.Printf("knowledge base loaded: %d methods, %d processing, %d guidelines, %d examples",
		len(b.categories["analysis_methods"]), len(b.categories["data_processing"]),
		len(b.categories["interpretation_guidelines"]), len(b.categories["analysis_examples"]))
	return b, nil
}

func loadRecords(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return records, nil
}

// Search retrieves the knowledge relevant to a classified request.
func (b *Base) Search(q Query) Set {
	b.logger.Printf("search start: %s", q.Primary)

	methods := b.searchMethods(q.Primary, q.Secondary)
	processing := b.searchProcessing(q)
	guidelines := b.searchGuidelines(methods)
	examples := b.searchExamples(q.Primary)

	set := Set{
		Methods:    methods,
		Processing: processing,
		Guidelines: guidelines,
		Examples:   examples,
		Summary: Summary{
			PrimaryIntent:   q.Primary,
			MethodsFound:    len(methods),
			ProcessingFound: len(processing),
			GuidelinesFound: len(guidelines),
			ExamplesFound:   len(examples),
		},
	}
	b.logger.Printf("search complete: %+v", set.Summary)
	return set
}

// searchMethods combines the direct intent-to-method mapping with a tag
// search over the index, deduplicated by record id.
func (b *Base) searchMethods(primary string, secondary []string) []Record {
	wanted := map[string]bool{}
	for _, id := range intentToMethods[primary] {
		wanted[id] = true
	}
	for _, intent := range secondary {
		for _, id := range intentToMethods[intent] {
			wanted[id] = true
		}
	}

	for _, id := range b.tagSearch("analysis_methods", intentToTags[primary]) {
		wanted[id] = true
	}

	var methods []Record
	for _, rec := range b.categories["analysis_methods"] {
		if wanted[rec.ID] {
			methods = append(methods, rec)
		}
	}
	return methods
}

// tagSearch runs the intent tags through the bleve index and returns the
// matching record ids within one category.
func (b *Base) tagSearch(category string, tags []string) []string {
	if b.index == nil || len(tags) == 0 {
		return nil
	}
	query := bleve.NewMatchQuery(strings.Join(tags, " "))
	req := bleve.NewSearchRequest(query)
	req.Size = 25
	res, err := b.index.Search(req)
	if err != nil {
		b.logger.Printf("tag search failed: %v", err)
		return nil
	}
	var ids []string
	for _, hit := range res.Hits {
		ref, ok := b.docs[hit.ID]
		if !ok || ref.category != category {
			continue
		}
		ids = append(ids, b.categories[category][ref.position].ID)
	}
	return ids
}

// searchProcessing estimates the preprocessing recipes a request needs.
func (b *Base) searchProcessing(q Query) []Record {
	var needed []string
	if q.HasDateColumns || q.Primary == "trend_analysis" {
		needed = append(needed, "convert_to_datetime", "aggregate_by_month")
	}
	if q.Primary == "clustering" || q.Primary == "regression_analysis" {
		needed = append(needed, "handle_missing_median", "standardize_features")
	}
	switch q.Primary {
	case "clustering", "regression_analysis", "correlation_analysis":
		needed = append(needed, "remove_outliers_iqr")
	}
	if q.Primary == "regression_analysis" {
		needed = append(needed, "create_dummy_variables")
	}

	wanted := map[string]bool{}
	for _, id := range needed {
		wanted[id] = true
	}
	var processing []Record
	for _, rec := range b.categories["data_processing"] {
		if wanted[rec.ID] {
			processing = append(processing, rec)
		}
	}
	return processing
}

func (b *Base) searchGuidelines(methods []Record) []Record {
	wanted := map[string]bool{}
	for _, m := range methods {
		if m.GuidelineID != "" {
			wanted[m.GuidelineID] = true
		}
	}
	var guidelines []Record
	for _, rec := range b.categories["interpretation_guidelines"] {
		if wanted[rec.ID] {
			guidelines = append(guidelines, rec)
		}
	}
	return guidelines
}

func (b *Base) searchExamples(primary string) []Record {
	wanted := map[string]bool{}
	for _, id := range intentToExamples[primary] {
		wanted[id] = true
	}
	var examples []Record
	for _, rec := range b.categories["analysis_examples"] {
		if wanted[rec.ID] {
			examples = append(examples, rec)
		}
	}
	return examples
}

// MethodByID returns a method record when present.
func (b *Base) MethodByID(id string) (Record, bool) {
	for _, rec := range b.categories["analysis_methods"] {
		if rec.ID == id {
			return rec, true
		}
	}
	return Record{}, false
}

// FullText runs a free-text query over the whole knowledge base.
func (b *Base) FullText(text string, limit int) []Record {
	if b.index == nil || strings.TrimSpace(text) == "" {
		return nil
	}
	if limit <= 0 {
		limit = 10
	}
	req := bleve.NewSearchRequest(bleve.NewMatchQuery(text))
	req.Size = limit
	res, err := b.index.Search(req)
	if err != nil {
		b.logger.Printf("full-text search failed: %v", err)
		return nil
	}
	var out []Record
	for _, hit := range res.Hits {
		ref, ok := b.docs[hit.ID]
		if !ok {
			continue
		}
		out = append(out, b.categories[ref.category][ref.position])
	}
	return out
}
