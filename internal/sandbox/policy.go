package sandbox

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Policy represents the execution ceilings loaded from the policy file.
// The gate runs before every launch; it caps wall-clock timeout and rejects
// network-enabled requests when the policy forbids them. Kernel-level
// confinement (namespaces, cgroups) is out of scope.
type Policy struct {
	Provider string  `yaml:"provider"`
	CPU      float64 `yaml:"cpu"`
	Timeout  string  `yaml:"timeout"`
	Network  struct {
		Enabled   bool     `yaml:"enabled"`
		Allowlist []string `yaml:"allowlist"`
	} `yaml:"network"`
}

// MaxTimeout returns the policy timeout ceiling, or zero when unset.
func (p *Policy) MaxTimeout() time.Duration {
	if p == nil || p.Timeout == "" {
		return 0
	}
	d, err := time.ParseDuration(p.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// LoadPolicy reads the sandbox policy from a YAML file.
func LoadPolicy(path string) (*Policy, error) {
	if path == "" {
		return nil, fmt.Errorf("policy file not configured")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy: %w", err)
	}
	var doc struct {
		Sandbox Policy `yaml:"sandbox"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse policy: %w", err)
	}
	if doc.Sandbox.Provider == "" {
		doc.Sandbox.Provider = "subprocess"
	}
	return &doc.Sandbox, nil
}

// Enforcer performs policy validation prior to execution.
type Enforcer struct {
	policy *Policy
}

// NewEnforcer wraps a policy. A nil policy disables enforcement.
func NewEnforcer(policy *Policy) *Enforcer {
	return &Enforcer{policy: policy}
}

// LaunchSpec describes an execution request for validation. Validate
// applies policy defaults in place so callers can rely on the normalized
// values downstream.
type LaunchSpec struct {
	Provider       string
	Timeout        time.Duration
	NetworkEnabled bool
}

// Validate ensures the spec meets policy requirements.
func (e *Enforcer) Validate(spec *LaunchSpec) error {
	if e == nil || e.policy == nil {
		return nil
	}
	if spec == nil {
		return fmt.Errorf("launch spec is nil")
	}
	if spec.Provider == "" {
		spec.Provider = e.policy.Provider
	} else if spec.Provider != e.policy.Provider {
		return fmt.Errorf("provider %s not allowed (configured %s)", spec.Provider, e.policy.Provider)
	}
	if max := e.policy.MaxTimeout(); max > 0 {
		if spec.Timeout <= 0 {
			spec.Timeout = max
		} else if spec.Timeout > max {
			return fmt.Errorf("timeout %s exceeds policy %s", spec.Timeout, max)
		}
	}
	if !e.policy.Network.Enabled && spec.NetworkEnabled {
		return fmt.Errorf("network access disabled by policy")
	}
	return nil
}

// Policy returns the underlying policy, useful for diagnostics.
func (e *Enforcer) Policy() *Policy {
	if e == nil {
		return nil
	}
	return e.policy
}
