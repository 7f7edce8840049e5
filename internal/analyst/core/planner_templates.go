package core

// Step skeletons per intent. Entity binding happens here; ordering and
// dependency repair happen in the planner.

func explorationSkeleton() []Step {
	return []Step{
		{
			ID:             "1",
			Name:           "Load data and basic information",
			Description:    "Read the data file and report row count, column count and types",
			MethodID:       "data_load_info",
			ExpectedOutput: "basic data information and a sample",
		},
		{
			ID:             "2",
			Name:           "Descriptive statistics",
			Description:    "Compute mean, median, standard deviation and quartiles for numeric variables",
			MethodID:       "desc_stats_summary",
			Dependencies:   []string{"1"},
			ExpectedOutput: "descriptive statistics table",
		},
		{
			ID:             "3",
			Name:           "Missing values and data quality",
			Description:    "Count missing values per column and assess data quality",
			MethodID:       "data_quality_check",
			Dependencies:   []string{"1"},
			ExpectedOutput: "data quality report",
		},
		{
			ID:             "4",
			Name:           "Distribution visualization",
			Description:    "Plot histograms and box plots for the main variables",
			MethodID:       "distribution_visualization",
			Dependencies:   []string{"2"},
			ExpectedOutput: "distribution charts",
		},
	}
}

func descriptiveStatsSkeleton(req ParsedRequest) []Step {
	plan := []Step{
		{
			ID:             "1",
			Name:           "Load data",
			Description:    "Read the data file",
			MethodID:       "data_load",
			ExpectedOutput: "data frame",
		},
		{
			ID:           "2",
			Name:         "Descriptive statistics",
			Description:  "Compute descriptive statistics for the requested variables",
			MethodID:     "desc_stats_summary",
			Dependencies: []string{"1"},
			Parameters: map[string]interface{}{
				"variables": req.Entities.Variables,
			},
			ExpectedOutput: "descriptive statistics table",
		},
	}
	if req.Entities.GroupBy != "" {
		plan = append(plan, Step{
			ID:           "3",
			Name:         "Group-wise statistics",
			Description:  "Compute descriptive statistics per group",
			MethodID:     "desc_stats_groupby",
			Dependencies: []string{"2"},
			Parameters: map[string]interface{}{
				"groupby": req.Entities.GroupBy,
			},
			ExpectedOutput: "per-group statistics table",
		})
	}
	return plan
}

func correlationSkeleton() []Step {
	return []Step{
		{
			ID:             "1",
			Name:           "Load data",
			Description:    "Read the data file",
			MethodID:       "data_load",
			ExpectedOutput: "data frame",
		},
		{
			ID:             "2",
			Name:           "Select numeric variables",
			Description:    "Select the numeric variables eligible for correlation",
			MethodID:       "select_numeric_variables",
			Dependencies:   []string{"1"},
			ExpectedOutput: "numeric variable list",
		},
		{
			ID:             "3",
			Name:           "Correlation analysis",
			Description:    "Compute the correlation matrix and render a heatmap",
			MethodID:       "correlation_analysis",
			Dependencies:   []string{"2"},
			ExpectedOutput: "correlation matrix and heatmap",
		},
	}
}

func trendSkeleton(req ParsedRequest) []Step {
	dateColumn := "date"
	if len(req.Entities.DateColumns) > 0 {
		dateColumn = req.Entities.DateColumns[0]
	}
	valueColumn := "sales"
	if len(req.Entities.NumericColumns) > 0 {
		valueColumn = req.Entities.NumericColumns[0]
	}
	return []Step{
		{
			ID:             "1",
			Name:           "Load data",
			Description:    "Read the data file",
			MethodID:       "data_load",
			ExpectedOutput: "data frame",
		},
		{
			ID:           "2",
			Name:         "Convert date column",
			Description:  "Parse the date column into datetime values",
			MethodID:     "convert_to_datetime",
			Dependencies: []string{"1"},
			Parameters: map[string]interface{}{
				"column": dateColumn,
			},
			ExpectedOutput: "data with parsed dates",
		},
		{
			ID:           "3",
			Name:         "Aggregate over time",
			Description:  "Aggregate the value column per calendar month",
			MethodID:     "aggregate_by_month",
			Dependencies: []string{"2"},
			Parameters: map[string]interface{}{
				"date_column":  dateColumn,
				"value_column": valueColumn,
			},
			ExpectedOutput: "monthly aggregates",
		},
		{
			ID:             "4",
			Name:           "Trend visualization",
			Description:    "Plot the aggregated series as a line chart",
			MethodID:       "line_chart",
			Dependencies:   []string{"3"},
			ExpectedOutput: "trend chart",
		},
	}
}

func clusteringSkeleton() []Step {
	return []Step{
		{
			ID:             "1",
			Name:           "Load data",
			Description:    "Read the data file",
			MethodID:       "data_load",
			ExpectedOutput: "data frame",
		},
		{
			ID:             "2",
			Name:           "Feature selection",
			Description:    "Choose the features used for clustering",
			MethodID:       "feature_selection",
			Dependencies:   []string{"1"},
			ExpectedOutput: "feature matrix",
		},
		{
			ID:             "3",
			Name:           "Handle missing values",
			Description:    "Fill missing feature values with the median",
			MethodID:       "handle_missing_median",
			Dependencies:   []string{"2"},
			ExpectedOutput: "imputed features",
		},
		{
			ID:             "4",
			Name:           "Standardize features",
			Description:    "Scale features to zero mean and unit variance",
			MethodID:       "standardize_features",
			Dependencies:   []string{"3"},
			ExpectedOutput: "standardized features",
		},
		{
			ID:           "5",
			Name:         "K-means clustering",
			Description:  "Run k-means over the standardized features",
			MethodID:     "kmeans_clustering",
			Dependencies: []string{"4"},
			Parameters: map[string]interface{}{
				"n_clusters": 4,
			},
			ExpectedOutput: "cluster assignments",
		},
		{
			ID:             "6",
			Name:           "Cluster profiling",
			Description:    "Describe the characteristics of each cluster",
			MethodID:       "cluster_analysis",
			Dependencies:   []string{"5"},
			ExpectedOutput: "cluster profiles",
		},
	}
}

func regressionSkeleton() []Step {
	return []Step{
		{
			ID:             "1",
			Name:           "Load data",
			Description:    "Read the data file",
			MethodID:       "data_load",
			ExpectedOutput: "data frame",
		},
		{
			ID:             "2",
			Name:           "Variable selection",
			Description:    "Choose the target and feature variables",
			MethodID:       "variable_selection",
			Dependencies:   []string{"1"},
			ExpectedOutput: "selected variables",
		},
		{
			ID:             "3",
			Name:           "Preprocessing",
			Description:    "Handle missing values and remove outliers",
			MethodID:       "data_preprocessing",
			Dependencies:   []string{"2"},
			ExpectedOutput: "preprocessed data",
		},
		{
			ID:             "4",
			Name:           "Linear regression",
			Description:    "Fit and evaluate a linear regression model",
			MethodID:       "linear_regression",
			Dependencies:   []string{"3"},
			ExpectedOutput: "regression results",
		},
	}
}

func hypothesisTestingSkeleton() []Step {
	return []Step{
		{
			ID:             "1",
			Name:           "Load data",
			Description:    "Read the data file",
			MethodID:       "data_load",
			ExpectedOutput: "data frame",
		},
		{
			ID:             "2",
			Name:           "Check test variables",
			Description:    "Verify the numeric variable and the grouping variable",
			MethodID:       "test_variable_check",
			Dependencies:   []string{"1"},
			ExpectedOutput: "test variable information",
		},
		{
			ID:             "3",
			Name:           "Independent two-sample t-test",
			Description:    "Test the difference in means between two groups",
			MethodID:       "t_test_independent",
			Dependencies:   []string{"2"},
			ExpectedOutput: "t-test results",
		},
	}
}
