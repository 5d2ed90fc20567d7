// Package envconfig reads training defaults from GRAPHNET_* environment
// variables. Malformed values are logged and replaced by the default.
package envconfig

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"k8s.io/klog/v2"
)

var (
	// Epochs is the number of passes over the training set (GRAPHNET_EPOCHS).
	Epochs = Uint("GRAPHNET_EPOCHS", 30)

	// LearningRate is the optimizer step size (GRAPHNET_LR).
	LearningRate = Float("GRAPHNET_LR", 0.1)

	// Hidden is the hidden layer width (GRAPHNET_HIDDEN).
	Hidden = Uint("GRAPHNET_HIDDEN", 8)

	// Seed seeds parameter initialization (GRAPHNET_SEED).
	Seed = Uint("GRAPHNET_SEED", 1)

	// Optimizer names the update rule, "sgd" or "adam" (GRAPHNET_OPTIMIZER).
	Optimizer = StringWithDefault("GRAPHNET_OPTIMIZER", "sgd")

	// Mode selects per-example or full-batch training (GRAPHNET_MODE).
	Mode = StringWithDefault("GRAPHNET_MODE", "batch")

	// Debug enables verbose logging (GRAPHNET_DEBUG).
	Debug = Bool("GRAPHNET_DEBUG")
)

// Var returns an environment variable stripped of leading and trailing
// quotes or spaces.
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}

// Bool returns a reader for a boolean variable. Any unparsable non-empty
// value counts as true.
func Bool(key string) func() bool {
	return func() bool {
		if s := Var(key); s != "" {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return true
			}
			return b
		}
		return false
	}
}

// String returns a reader for a string variable.
func String(key string) func() string {
	return func() string {
		return Var(key)
	}
}

// StringWithDefault returns a reader for a string variable that falls back
// to defaultValue when unset.
func StringWithDefault(key, defaultValue string) func() string {
	return func() string {
		if s := Var(key); s != "" {
			return s
		}
		return defaultValue
	}
}

// Uint returns a reader for an unsigned integer variable.
func Uint(key string, defaultValue uint) func() uint {
	return func() uint {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseUint(s, 10, 64); err != nil {
				klog.Warningf("invalid environment variable %s=%q, using default %d", key, s, defaultValue)
			} else {
				return uint(n)
			}
		}
		return defaultValue
	}
}

// Float returns a reader for a float32 variable.
func Float(key string, defaultValue float32) func() float32 {
	return func() float32 {
		if s := Var(key); s != "" {
			if f, err := strconv.ParseFloat(s, 32); err != nil {
				klog.Warningf("invalid environment variable %s=%q, using default %g", key, s, defaultValue)
			} else {
				return float32(f)
			}
		}
		return defaultValue
	}
}

// EnvVar describes one variable for display.
type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap returns every variable with its current value.
func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"GRAPHNET_EPOCHS":    {"GRAPHNET_EPOCHS", Epochs(), "Training epochs (default 30)"},
		"GRAPHNET_LR":        {"GRAPHNET_LR", LearningRate(), "Learning rate (default 0.1)"},
		"GRAPHNET_HIDDEN":    {"GRAPHNET_HIDDEN", Hidden(), "Hidden layer width (default 8)"},
		"GRAPHNET_SEED":      {"GRAPHNET_SEED", Seed(), "Initialization seed (default 1)"},
		"GRAPHNET_OPTIMIZER": {"GRAPHNET_OPTIMIZER", Optimizer(), "Optimizer: sgd or adam (default sgd)"},
		"GRAPHNET_MODE":      {"GRAPHNET_MODE", Mode(), "Training mode: example or batch (default batch)"},
		"GRAPHNET_DEBUG":     {"GRAPHNET_DEBUG", Debug(), "Show additional debug information"},
	}
}

// Values returns every variable's current value as a string.
func Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}
