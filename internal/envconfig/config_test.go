package envconfig

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestVar(t *testing.T) {
	cases := map[string]string{
		"plain":    "plain",
		" spaced ": "spaced",
		`"quoted"`: "quoted",
		"'single'": "single",
		"":         "",
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			t.Setenv("GRAPHNET_TEST_VAR", in)
			assert.Equal(t, want, Var("GRAPHNET_TEST_VAR"))
		})
	}
}

func TestUint(t *testing.T) {
	cases := map[string]uint{
		"":    30,
		"100": 100,
		"-1":  30,
		"abc": 30,
		"0":   0,
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			t.Setenv("GRAPHNET_EPOCHS", in)
			assert.Equal(t, want, Epochs())
		})
	}
}

func TestFloat(t *testing.T) {
	cases := map[string]float32{
		"":     0.1,
		"0.5":  0.5,
		"1e-3": 0.001,
		"fast": 0.1,
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			t.Setenv("GRAPHNET_LR", in)
			assert.InDelta(t, want, LearningRate(), 1e-9)
		})
	}
}

func TestBool(t *testing.T) {
	cases := map[string]bool{
		"":      false,
		"true":  true,
		"false": false,
		"1":     true,
		"0":     false,
		"yes":   true,
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			t.Setenv("GRAPHNET_DEBUG", in)
			assert.Equal(t, want, Debug())
		})
	}
}

func TestStringWithDefault(t *testing.T) {
	t.Setenv("GRAPHNET_OPTIMIZER", "")
	assert.Equal(t, "sgd", Optimizer())
	t.Setenv("GRAPHNET_OPTIMIZER", "adam")
	assert.Equal(t, "adam", Optimizer())
	assert.Equal(t, "adam", String("GRAPHNET_OPTIMIZER")())
}

func TestValues(t *testing.T) {
	for _, k := range []string{"GRAPHNET_EPOCHS", "GRAPHNET_LR", "GRAPHNET_HIDDEN", "GRAPHNET_SEED",
		"GRAPHNET_OPTIMIZER", "GRAPHNET_MODE", "GRAPHNET_DEBUG"} {
		t.Setenv(k, "")
	}
	t.Setenv("GRAPHNET_HIDDEN", "16")

	want := map[string]string{
		"GRAPHNET_EPOCHS":    "30",
		"GRAPHNET_LR":        "0.1",
		"GRAPHNET_HIDDEN":    "16",
		"GRAPHNET_SEED":      "1",
		"GRAPHNET_OPTIMIZER": "sgd",
		"GRAPHNET_MODE":      "batch",
		"GRAPHNET_DEBUG":     "false",
	}
	if diff := cmp.Diff(want, Values()); diff != "" {
		t.Errorf("Values() mismatch (-want +got):\n%s", diff)
	}
}
