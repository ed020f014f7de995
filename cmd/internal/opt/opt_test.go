package opt

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazanlab/toguz/ai"
	"github.com/kazanlab/toguz/toguz"
)

func parse(t *testing.T, args ...string) *AI {
	t.Helper()
	var o AI
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	o.AddFlags(fs)
	require.NoError(t, fs.Parse(args))
	return &o
}

func TestBuild(t *testing.T) {
	p, err := parse(t, "-tier", "easy", "-seed", "3").Build()
	require.NoError(t, err)
	assert.IsType(t, &ai.RandomAI{}, p)

	p, err = parse(t, "-tier", "2").Build()
	require.NoError(t, err)
	assert.IsType(t, &ai.MinimaxAI{}, p)

	_, err = parse(t, "-tier", "expert").Build()
	assert.Error(t, err)
}

func TestMinimaxConfig(t *testing.T) {
	cfg, err := parse(t, "-tier", "hard").MinimaxConfig()
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Depth)
	assert.True(t, cfg.Prune)

	cfg, err = parse(t, "-tier", "medium", "-depth", "3", "-prune=false").MinimaxConfig()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Depth)
	assert.False(t, cfg.Prune)

	cfg, err = parse(t, "-weights", `{"Store": 2, "Tuz": 0, "Stones": 0}`).MinimaxConfig()
	require.NoError(t, err)
	assert.Equal(t, 0.0, cfg.Evaluate(toguz.New(), toguz.White))

	_, err = parse(t, "-weights", "{").MinimaxConfig()
	assert.Error(t, err)
}
