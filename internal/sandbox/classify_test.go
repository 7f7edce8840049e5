package sandbox

import "testing"

func TestClassifyError(t *testing.T) {
	cases := []struct {
		stderr string
		want   string
	}{
		{"Traceback...\nModuleNotFoundError: No module named 'seaborn'", "missing_module"},
		{"FileNotFoundError: [Errno 2] No such file or directory: 'data/sample_data.csv'", "missing_file"},
		{"KeyError: 'sales'", "missing_column"},
		{"ValueError: could not convert string to float: 'abc'", "value_error"},
		{"ZeroDivisionError: division by zero", "unknown"},
		{"", "unknown"},
	}
	for _, tc := range cases {
		info := classifyError(tc.stderr)
		if info.Type != tc.want {
			t.Fatalf("classifyError(%q).Type = %q, want %q", tc.stderr, info.Type, tc.want)
		}
		if info.Message != tc.stderr {
			t.Fatalf("raw message not preserved for %q", tc.stderr)
		}
	}
}

// When the traceback mentions several error names, the first rule in the
// table wins.
func TestClassifyErrorFirstRuleWins(t *testing.T) {
	stderr := "ModuleNotFoundError while handling ValueError"
	if got := classifyError(stderr).Type; got != "missing_module" {
		t.Fatalf("type = %q, want missing_module", got)
	}
}

func TestTimeoutError(t *testing.T) {
	info := timeoutError("30s")
	if info.Type != "timeout" {
		t.Fatalf("type = %q, want timeout", info.Type)
	}
	if len(info.Suggestions) == 0 {
		t.Fatalf("timeout error has no suggestions")
	}
}
