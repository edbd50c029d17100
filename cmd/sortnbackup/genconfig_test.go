package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/sortnbackup/pkg/config"
	"github.com/arthur-debert/sortnbackup/pkg/testutil"
)

func TestExampleConfigLoads(t *testing.T) {
	path := testutil.CreateFile(t, t.TempDir(), "config.yaml", exampleConfig)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Contains(t, cfg.Sources, "camera")
	assert.Contains(t, cfg.Targets, "backup")
	require.Len(t, cfg.Groups, 3)
	assert.Equal(t, config.RuleCopyTo, cfg.Groups[0].Rule.Kind)
	assert.Equal(t, config.RuleTraverse, cfg.Groups[2].Rule.Kind)

	// The time formats survive verbatim into the compiled templates.
	assert.True(t, strings.Contains(exampleConfig, `img_date_time: "%d"`))
}
