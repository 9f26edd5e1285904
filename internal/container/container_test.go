package container

import (
	"bytes"
	"context"
	"testing"

	"fairdraw/adapters/entropy"
	"fairdraw/adapters/prng"
	"fairdraw/app"
	"fairdraw/internal/config"
	"fairdraw/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		PRNG:     config.PRNGConfig{Hash: prng.HashBLAKE2b, Policy: prng.PolicyModulo},
		Batch:    config.BatchConfig{Workers: 2, ProgressEvery: 10},
		LogLevel: "DEBUG",
	}
}

func TestNewWiresDrawService(t *testing.T) {
	var logs bytes.Buffer
	c, err := New(testConfig(), &logs)
	require.NoError(t, err)

	assert.Equal(t, string(prng.HashBLAKE2b), c.Draws.ExpanderName())
	assert.Equal(t, prng.PolicyModulo, c.Draws.Policy())
	assert.Nil(t, c.DrawLog)

	summary, err := c.BatchService(entropy.NewDerivedSource(1)).Run(context.Background(),
		app.BatchRequest{Range: 10, Columns: 1, Iterations: 3},
		func(app.BatchLine) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Lines)
	assert.Contains(t, logs.String(), "[INFO] batch")

	assert.NoError(t, c.Shutdown(context.Background()))
}

func TestNewRejectsBadInput(t *testing.T) {
	_, err := New(nil, nil)
	assert.Error(t, err)

	cfg := testConfig()
	cfg.PRNG.Hash = "md5"
	_, err = New(cfg, nil)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestInitWithDatabaseRequiresURL(t *testing.T) {
	c, err := New(testConfig(), nil)
	require.NoError(t, err)

	err = c.InitWithDatabase(context.Background())
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}
