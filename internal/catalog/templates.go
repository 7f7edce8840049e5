package catalog

// Python code templates for each method. Placeholders use the {name} form
// and are resolved during synthesis. Templates stick to plain prints and
// percent formatting so that only {name} tokens ever look like placeholders.

const tmplDataLoad = `import pandas as pd
df = pd.read_csv('{data_path}')
print('data size: %d rows, %d columns' % df.shape)
print(df.head())`

const tmplDataLoadInfo = `import pandas as pd
df = pd.read_csv('{data_path}')
print('=== basic information ===')
print('data size: %d rows, %d columns' % df.shape)
print()
print('=== dtypes ===')
print(df.dtypes)
print()
print('=== first 5 rows ===')
print(df.head())
print()
print('=== summary statistics ===')
print(df.describe())`

const tmplDescStatsSummary = `import pandas as pd
df = pd.read_csv('{data_path}')
{variables_filter}result = df.describe()
print('=== descriptive statistics ===')
print(result)
result.to_csv('{output_path}/desc_stats.csv')`

const tmplDescStatsGroupby = `import pandas as pd
df = pd.read_csv('{data_path}')
grouped = df.groupby('{groupby}').describe()
print('=== grouped descriptive statistics ===')
print(grouped)
grouped.to_csv('{output_path}/desc_stats_groupby.csv')`

const tmplDataQualityCheck = `import pandas as pd
import numpy as np
df = pd.read_csv('{data_path}')
print('=== data quality report ===')
print('total rows: %d' % len(df))
print('total columns: %d' % len(df.columns))
print()
print('=== missing values ===')
missing_info = df.isnull().sum()
missing_percent = (missing_info / len(df)) * 100
missing_df = pd.DataFrame({'missing_count': missing_info, 'missing_percent': missing_percent})
print(missing_df[missing_df['missing_count'] > 0])
print()
print('=== dtype counts ===')
print(df.dtypes.value_counts())
print()
print('=== outlier candidates (IQR) ===')
numeric_cols = df.select_dtypes(include=[np.number]).columns
for col in numeric_cols:
    q1 = df[col].quantile(0.25)
    q3 = df[col].quantile(0.75)
    iqr = q3 - q1
    lower = q1 - 1.5 * iqr
    upper = q3 + 1.5 * iqr
    outliers = df[(df[col] < lower) | (df[col] > upper)]
    print('%s: %d outlier candidates (%.1f%%)' % (col, len(outliers), len(outliers) / len(df) * 100))
quality_report = {
    'total_rows': len(df),
    'total_columns': len(df.columns),
    'missing_values': missing_info.to_dict(),
    'data_types': df.dtypes.astype(str).to_dict(),
}
import json
with open('{output_path}/data_quality_report.json', 'w') as f:
    json.dump(quality_report, f, indent=2)`

const tmplSelectNumericVariables = `import pandas as pd
import numpy as np
df = pd.read_csv('{data_path}')
numeric_cols = df.select_dtypes(include=[np.number]).columns.tolist()
print('numeric variables: %s' % numeric_cols)
print('count: %d' % len(numeric_cols))`

const tmplCorrelationAnalysis = `import pandas as pd
import matplotlib.pyplot as plt
import seaborn as sns
import numpy as np
df = pd.read_csv('{data_path}')
numeric_cols = df.select_dtypes(include=[np.number]).columns.tolist()
corr_matrix = df[numeric_cols].corr()
print('=== correlation matrix ===')
print(corr_matrix)
plt.figure(figsize=(10, 8))
sns.heatmap(corr_matrix, annot=True, cmap='coolwarm', center=0, square=True)
plt.title('Correlation heatmap')
plt.tight_layout()
plt.savefig('{output_path}/correlation_heatmap.png', dpi=300, bbox_inches='tight')
plt.close()
corr_matrix.to_csv('{output_path}/correlation_matrix.csv')`

const tmplConvertToDatetime = `import pandas as pd
df = pd.read_csv('{data_path}')
print('dtype before: %s' % df['{column}'].dtype)
print(df['{column}'].head())
try:
    df['{column}'] = pd.to_datetime(df['{column}'])
    print('dtype after: %s' % df['{column}'].dtype)
    print('date range: %s to %s' % (df['{column}'].min(), df['{column}'].max()))
    df.to_csv('{output_path}/datetime_converted.csv', index=False)
    print('saved converted data: {output_path}/datetime_converted.csv')
except Exception as e:
    print('datetime conversion error: %s' % e)
    print('check the date format of the column')`

const tmplAggregateByMonth = `import pandas as pd
df = pd.read_csv('{data_path}')
df['{date_column}'] = pd.to_datetime(df['{date_column}'])
df['year_month'] = df['{date_column}'].dt.to_period('M')
agg_method = '{aggregation}'
print('aggregation: %s' % agg_method)
print('value column: {value_column}')
if agg_method == 'mean':
    monthly_data = df.groupby('year_month')['{value_column}'].mean().reset_index()
elif agg_method == 'count':
    monthly_data = df.groupby('year_month')['{value_column}'].count().reset_index()
else:
    monthly_data = df.groupby('year_month')['{value_column}'].sum().reset_index()
monthly_data['year_month'] = monthly_data['year_month'].astype(str)
print('=== monthly aggregation ===')
print(monthly_data)
monthly_data.to_csv('{output_path}/monthly_aggregated.csv', index=False)
print('saved monthly data: {output_path}/monthly_aggregated.csv')`

const tmplLineChart = `import pandas as pd
import matplotlib.pyplot as plt
df = pd.read_csv('{data_path}')
if 'year_month' in df.columns:
    df['date'] = pd.to_datetime(df['year_month'])
else:
    df['date'] = pd.to_datetime(df['{x_axis}'])
plt.figure(figsize=(12, 6))
plt.plot(df['date'], df['{y_axis}'], marker='o', linewidth=2, markersize=6)
plt.title('{title}', fontsize=16, fontweight='bold')
plt.xlabel('date', fontsize=12)
plt.ylabel('{y_axis}', fontsize=12)
plt.grid(True, alpha=0.3)
plt.xticks(rotation=45)
plt.tight_layout()
plt.savefig('{output_path}/line_chart.png', dpi=300, bbox_inches='tight')
plt.close()
print('saved line chart: {output_path}/line_chart.png')`

const tmplDistributionVisualization = `import pandas as pd
import matplotlib.pyplot as plt
import numpy as np
df = pd.read_csv('{data_path}')
numeric_cols = df.select_dtypes(include=[np.number]).columns.tolist()
n = len(numeric_cols)
if n == 0:
    print('warning: no numeric columns to plot')
else:
    fig, axes = plt.subplots(nrows=n, ncols=2, figsize=(12, 4 * n))
    if n == 1:
        axes = [axes]
    for i, col in enumerate(numeric_cols):
        df[col].hist(ax=axes[i][0], bins=30)
        axes[i][0].set_title(col + ' histogram')
        df.boxplot(column=col, ax=axes[i][1])
        axes[i][1].set_title(col + ' boxplot')
    plt.tight_layout()
    plt.savefig('{output_path}/distributions.png', dpi=300, bbox_inches='tight')
    plt.close()
    print('saved distribution plots: {output_path}/distributions.png')`

const tmplTTestIndependent = `from scipy import stats
import pandas as pd
import numpy as np
df = pd.read_csv('{data_path}')
groups = df['{group_column}'].unique()
print('groups: %s' % groups)
if len(groups) != 2:
    print('warning: independent t-test requires exactly two groups')
    exit()
group1_data = df[df['{group_column}'] == groups[0]]['{data_column}'].dropna()
group2_data = df[df['{group_column}'] == groups[1]]['{data_column}'].dropna()
print('group 1 (%s): mean=%.4f, std=%.4f, n=%d' % (groups[0], group1_data.mean(), group1_data.std(), len(group1_data)))
print('group 2 (%s): mean=%.4f, std=%.4f, n=%d' % (groups[1], group2_data.mean(), group2_data.std(), len(group2_data)))
t_stat, p_value = stats.ttest_ind(group1_data, group2_data)
print()
print('=== t-test result ===')
print('t statistic: %.4f' % t_stat)
print('p-value: %.4f' % p_value)
if p_value < 0.05:
    print('conclusion: statistically significant difference at the 5%% level')
else:
    print('conclusion: no statistically significant difference at the 5%% level')
result = {
    't_statistic': t_stat,
    'p_value': p_value,
    'group1_mean': group1_data.mean(),
    'group2_mean': group2_data.mean(),
    'group1_std': group1_data.std(),
    'group2_std': group2_data.std(),
}
import json
with open('{output_path}/t_test_result.json', 'w') as f:
    json.dump(result, f, indent=2)`

const tmplLinearRegression = `import pandas as pd
from sklearn.linear_model import LinearRegression
from sklearn.metrics import r2_score, mean_squared_error
import matplotlib.pyplot as plt
import numpy as np
df = pd.read_csv('{data_path}')
df_clean = df.dropna()
X = df_clean[{feature_variables}]
y = df_clean['{target_variable}']
print('rows used: %d' % len(df_clean))
print('features: %s' % list(X.columns))
print('target: %s' % y.name)
model = LinearRegression()
model.fit(X, y)
y_pred = model.predict(X)
r2 = r2_score(y, y_pred)
rmse = np.sqrt(mean_squared_error(y, y_pred))
print()
print('=== regression result ===')
print('r2 score: %.4f' % r2)
print('rmse: %.4f' % rmse)
print('intercept: %.4f' % model.intercept_)
for i, coef in enumerate(model.coef_):
    print('coefficient of %s: %.4f' % (X.columns[i], coef))
if len(X.columns) == 1:
    plt.figure(figsize=(10, 6))
    plt.scatter(X.iloc[:, 0], y, alpha=0.6, label='observed')
    plt.plot(X.iloc[:, 0], y_pred, color='red', label='fitted')
    plt.xlabel(X.columns[0])
    plt.ylabel(y.name)
    plt.title('Regression result (r2 = %.3f)' % r2)
    plt.legend()
    plt.savefig('{output_path}/regression_plot.png', dpi=300, bbox_inches='tight')
    plt.close()
result = {
    'r2_score': r2,
    'rmse': rmse,
    'coefficients': model.coef_.tolist(),
    'intercept': model.intercept_,
    'feature_names': list(X.columns),
}
import json
with open('{output_path}/regression_result.json', 'w') as f:
    json.dump(result, f, indent=2)`

const tmplKMeansClustering = `import pandas as pd
from sklearn.cluster import KMeans
from sklearn.preprocessing import StandardScaler
from sklearn.metrics import silhouette_score
import matplotlib.pyplot as plt
import numpy as np
df = pd.read_csv('{data_path}')
df_clean = df.dropna()
X = df_clean[{features}]
print('rows used: %d' % len(df_clean))
print('features: %s' % list(X.columns))
scaler = StandardScaler()
X_scaled = scaler.fit_transform(X)
kmeans = KMeans(n_clusters={n_clusters}, random_state=42, n_init=10)
cluster_labels = kmeans.fit_predict(X_scaled)
silhouette_avg = silhouette_score(X_scaled, cluster_labels)
print()
print('=== clustering result ===')
print('clusters: %d' % kmeans.n_clusters)
print('silhouette score: %.4f' % silhouette_avg)
df_clean = df_clean.copy()
df_clean['cluster'] = cluster_labels
for cluster_id in range(kmeans.n_clusters):
    cluster_data = df_clean[df_clean['cluster'] == cluster_id]
    print()
    print('cluster %d: %d rows' % (cluster_id, len(cluster_data)))
    print(cluster_data[{features}].describe())
df_clean.to_csv('{output_path}/clustered_data.csv', index=False)
if len({features}) >= 2:
    plt.figure(figsize=(10, 8))
    scatter = plt.scatter(X_scaled[:, 0], X_scaled[:, 1], c=cluster_labels, cmap='viridis', alpha=0.7)
    plt.colorbar(scatter)
    plt.xlabel(X.columns[0] + ' (scaled)')
    plt.ylabel(X.columns[1] + ' (scaled)')
    plt.title('K-means clustering (silhouette: %.3f)' % silhouette_avg)
    plt.savefig('{output_path}/clustering_plot.png', dpi=300, bbox_inches='tight')
    plt.close()
result = {
    'silhouette_score': silhouette_avg,
    'n_clusters': kmeans.n_clusters,
    'cluster_centers': kmeans.cluster_centers_.tolist(),
    'cluster_counts': [int(sum(cluster_labels == i)) for i in range(kmeans.n_clusters)],
}
import json
with open('{output_path}/clustering_result.json', 'w') as f:
    json.dump(result, f, indent=2)`

const tmplDefault = `import pandas as pd
# fallback processing
print('running default step...')`
