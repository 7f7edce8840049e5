// Package catalog maps method ids from an analysis plan onto concrete
// Python method descriptors: the library to use, the code template and the
// default parameters. Selection is total; an unknown method id falls back to
// a generic no-op descriptor instead of failing the plan.
package catalog

import (
	"fmt"
	"log"
	"sort"
	"strings"
)

// Descriptor describes a single executable analysis method.
type Descriptor struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	Library      string                 `json:"library"`
	Function     string                 `json:"function"`
	TemplateType string                 `json:"template_type"`
	Template     string                 `json:"code_template"`
	Parameters   map[string]interface{} `json:"parameters,omitempty"`
}

// Catalog resolves method ids to descriptors and applies per-method
// parameter adjustments.
type Catalog struct {
	logger  *log.Logger
	methods map[string]Descriptor
}

// adjuster mutates a selected descriptor based on its merged parameters.
type adjuster func(*Descriptor)

var adjusters = map[string]adjuster{
	"kmeans_clustering":  adjustKMeans,
	"desc_stats_summary": adjustDescStats,
}

// New builds the catalog with the static method table.
func New() *Catalog {
	return &Catalog{
		logger:  log.New(log.Writer(), "[CATALOG] ", log.LstdFlags),
		methods: methodTable(),
	}
}

// Select returns the descriptor for a method id with step parameters merged
// in. Precedence: catalog defaults < step parameters < per-method
// adjustments. It never fails; unknown ids get the generic descriptor.
func (c *Catalog) Select(methodID string, stepParams map[string]interface{}) Descriptor {
	c.logger.Printf("selecting method: %s", methodID)

	desc, ok := c.methods[methodID]
	if !ok {
		c.logger.Printf("unknown method %q, using default descriptor", methodID)
		desc = defaultDescriptor()
	}

	params := make(map[string]interface{}, len(desc.Parameters)+len(stepParams))
	for k, v := range desc.Parameters {
		params[k] = v
	}
	for k, v := range stepParams {
		params[k] = v
	}
	desc.Parameters = params

	if adjust, ok := adjusters[desc.ID]; ok {
		adjust(&desc)
	}

	c.logger.Printf("selected method: %s", desc.Name)
	return desc
}

// MethodIDs lists all known method ids, sorted.
func (c *Catalog) MethodIDs() []string {
	ids := make([]string, 0, len(c.methods))
	for id := range c.methods {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func adjustKMeans(d *Descriptor) {
	if _, ok := d.Parameters["n_clusters"]; !ok {
		d.Parameters["n_clusters"] = 4
	}
}

func adjustDescStats(d *Descriptor) {
	vars := stringList(d.Parameters["variables"])
	if len(vars) > 0 {
		d.Parameters["variables_filter"] = fmt.Sprintf("selected_vars = %s\ndf = df[selected_vars]\n", pyList(vars))
	} else {
		d.Parameters["variables_filter"] = "# use all numeric variables\n"
	}
}

func stringList(v interface{}) []string {
	switch vals := v.(type) {
	case []string:
		return vals
	case []interface{}:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// pyList renders a slice as a Python list literal.
func pyList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = "'" + strings.ReplaceAll(s, "'", "\\'") + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func defaultDescriptor() Descriptor {
	return Descriptor{
		ID:           "default",
		Name:         "default processing",
		Library:      "pandas",
		Function:     "basic",
		TemplateType: "general",
		Template:     tmplDefault,
	}
}

func methodTable() map[string]Descriptor {
	return map[string]Descriptor{
		"data_load": {
			ID:           "data_load",
			Name:         "data load",
			Library:      "pandas",
			Function:     "read_csv",
			TemplateType: "data_io",
			Template:     tmplDataLoad,
		},
		"data_load_info": {
			ID:           "data_load_info",
			Name:         "data load and basic information",
			Library:      "pandas",
			Function:     "info",
			TemplateType: "data_exploration",
			Template:     tmplDataLoadInfo,
		},
		"desc_stats_summary": {
			ID:           "desc_stats_summary",
			Name:         "descriptive statistics summary",
			Library:      "pandas",
			Function:     "describe",
			TemplateType: "statistical_analysis",
			Template:     tmplDescStatsSummary,
		},
		"desc_stats_groupby": {
			ID:           "desc_stats_groupby",
			Name:         "grouped descriptive statistics",
			Library:      "pandas",
			Function:     "groupby",
			TemplateType: "statistical_analysis",
			Template:     tmplDescStatsGroupby,
		},
		"data_quality_check": {
			ID:           "data_quality_check",
			Name:         "data quality check",
			Library:      "pandas",
			Function:     "isnull",
			TemplateType: "data_exploration",
			Template:     tmplDataQualityCheck,
		},
		"select_numeric_variables": {
			ID:           "select_numeric_variables",
			Name:         "numeric variable selection",
			Library:      "pandas",
			Function:     "select_dtypes",
			TemplateType: "data_processing",
			Template:     tmplSelectNumericVariables,
		},
		"correlation_analysis": {
			ID:           "correlation_analysis",
			Name:         "correlation analysis",
			Library:      "pandas, matplotlib, seaborn",
			Function:     "corr",
			TemplateType: "correlation",
			Template:     tmplCorrelationAnalysis,
		},
		"convert_to_datetime": {
			ID:           "convert_to_datetime",
			Name:         "datetime conversion",
			Library:      "pandas",
			Function:     "to_datetime",
			TemplateType: "data_processing",
			Template:     tmplConvertToDatetime,
		},
		"aggregate_by_month": {
			ID:           "aggregate_by_month",
			Name:         "monthly aggregation",
			Library:      "pandas",
			Function:     "groupby",
			TemplateType: "data_processing",
			Template:     tmplAggregateByMonth,
		},
		"line_chart": {
			ID:           "line_chart",
			Name:         "line chart",
			Library:      "matplotlib, pandas",
			Function:     "plot",
			TemplateType: "visualization",
			Template:     tmplLineChart,
		},
		"distribution_visualization": {
			ID:           "distribution_visualization",
			Name:         "distribution visualization",
			Library:      "matplotlib, pandas",
			Function:     "hist",
			TemplateType: "visualization",
			Template:     tmplDistributionVisualization,
		},
		"t_test_independent": {
			ID:           "t_test_independent",
			Name:         "independent two-sample t-test",
			Library:      "scipy, pandas",
			Function:     "ttest_ind",
			TemplateType: "hypothesis_testing",
			Template:     tmplTTestIndependent,
		},
		"linear_regression": {
			ID:           "linear_regression",
			Name:         "linear regression",
			Library:      "scikit-learn, pandas, matplotlib",
			Function:     "LinearRegression",
			TemplateType: "machine_learning",
			Template:     tmplLinearRegression,
		},
		"kmeans_clustering": {
			ID:           "kmeans_clustering",
			Name:         "k-means clustering",
			Library:      "scikit-learn, pandas, matplotlib",
			Function:     "KMeans",
			TemplateType: "machine_learning",
			Template:     tmplKMeansClustering,
		},
	}
}
