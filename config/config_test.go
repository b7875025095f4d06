package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"

	"github.com/fib-lab/urbansim-core/config"
)

func TestDefaultIsWellFormed(t *testing.T) {
	c := config.Default()
	assert.Greater(t, c.Clock.DT, 0.0)
	assert.Greater(t, c.Spawn.IntervalTicks, 0)
}

func TestUnmarshalStrictRejectsUnknownKeys(t *testing.T) {
	doc := []byte("clock:\n  dt: 0.1\nbogus_key: true\n")
	var c config.Config
	err := yaml.UnmarshalStrict(doc, &c)
	assert.Error(t, err)
}

func TestUnmarshalOverridesSpawnWeights(t *testing.T) {
	doc := []byte("spawn:\n  enabled: true\n  interval_ticks: 5\n  weights:\n    n: 2.0\n    e: 0.5\n")
	var c config.Config
	require.NoError(t, yaml.UnmarshalStrict(doc, &c))
	assert.Equal(t, 5, c.Spawn.IntervalTicks)
	assert.InDelta(t, 2.0, c.Spawn.Weights["n"], 1e-9)
}
