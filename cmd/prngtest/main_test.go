package main

import (
	"bytes"
	stderrors "errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"fairdraw/domain/core"
	"fairdraw/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PRNG_HASH", "")
	t.Setenv("PRNG_POLICY", "")
	t.Setenv("BATCH_WORKERS", "")
	t.Setenv("BATCH_PROGRESS_EVERY", "")
}

func parseLines(t *testing.T, out string) [][]uint64 {
	t.Helper()
	var lines [][]uint64
	for _, line := range strings.Split(strings.TrimSuffix(out, "\n"), "\n") {
		require.True(t, strings.HasSuffix(line, "\t"), "line %q", line)
		var values []uint64
		for _, field := range strings.Fields(line) {
			v, err := strconv.ParseUint(field, 10, 64)
			require.NoError(t, err)
			values = append(values, v)
		}
		lines = append(lines, values)
	}
	return lines
}

func TestRunWritesValuesToStdout(t *testing.T) {
	isolateEnv(t)
	var stdout, stderr bytes.Buffer
	code := run([]string{"--seed", "42", "--count", "25", "--range", "6", "--columns", "3"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	lines := parseLines(t, stdout.String())
	require.Len(t, lines, 25)
	for _, line := range lines {
		require.Len(t, line, 3)
		for _, v := range line {
			assert.Less(t, v, uint64(6))
		}
	}
	assert.Contains(t, stderr.String(), "STARTING PRNG TEST")
	assert.Contains(t, stderr.String(), "RESEEDED to 42")
	assert.NotContains(t, stderr.String(), "Current status")
}

func TestRunIsReproducibleWithSeed(t *testing.T) {
	isolateEnv(t)
	args := []string{"--seed", "7", "--count", "12", "--range", "1000", "--workers", "3"}

	var first, second, errs bytes.Buffer
	require.Equal(t, 0, run(args, &first, &errs))
	require.Equal(t, 0, run(args, &second, &errs))
	assert.Equal(t, first.String(), second.String())

	var other bytes.Buffer
	require.Equal(t, 0, run([]string{"--seed", "8", "--count", "12", "--range", "1000"}, &other, &errs))
	assert.NotEqual(t, first.String(), other.String())
}

func TestRunWritesFileWithProgress(t *testing.T) {
	isolateEnv(t)
	t.Setenv("BATCH_PROGRESS_EVERY", "100")
	path := filepath.Join(t.TempDir(), "out.txt")

	var stdout, stderr bytes.Buffer
	code := run([]string{"--seed", "1", "--count", "250", "--range", "10", "--out", path}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	status := stdout.String()
	assert.Contains(t, status, "Results will be saved to '"+path+"' file")
	assert.Contains(t, status, "Current status: 100/250, processed 40.00%")
	assert.Contains(t, status, "Current status: 200/250, processed 80.00%")
	assert.Contains(t, status, "Current status: 250/250, processed 100.00%")
	assert.Contains(t, status, "elapsed time")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, parseLines(t, string(data)), 250)
}

func TestRunRejectsInvalidRequest(t *testing.T) {
	isolateEnv(t)
	for _, args := range [][]string{
		{"--range", "0"},
		{"--columns", "0"},
		{"--count", "0"},
		{"unexpected"},
	} {
		var stdout, stderr bytes.Buffer
		assert.Equal(t, 1, run(args, &stdout, &stderr), "args %v", args)
		assert.Empty(t, stdout.String(), "args %v", args)
	}
}

func TestRecordedBatchCommandsNeedDatabase(t *testing.T) {
	isolateEnv(t)
	for _, args := range [][]string{
		{"export", "0190c4d2-7a51-7b1c-9f0e-3c5d2a8b6e41"},
		{"verify", "0190c4d2-7a51-7b1c-9f0e-3c5d2a8b6e41"},
		{"batches"},
	} {
		var stdout, stderr bytes.Buffer
		assert.Equal(t, 1, run(args, &stdout, &stderr), "args %v", args)
		assert.Contains(t, stderr.String(), "DATABASE_URL", "args %v", args)
	}

	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, run([]string{"export", "not-a-uuid"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "invalid batch id")
}

func TestBatchLookupErrorMapsNotFound(t *testing.T) {
	id := core.NewBatchID()

	err := batchLookupError(id, core.NewBatchNotFoundError(id.String()))
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
	assert.Contains(t, err.Error(), id.String())

	other := stderrors.New("connection reset")
	assert.Equal(t, other, batchLookupError(id, other))
	assert.Nil(t, batchLookupError(id, nil))
}

func TestPrintErrorShowsCode(t *testing.T) {
	var buf bytes.Buffer
	printError(&buf, errors.ConfigInvalid("DATABASE_URL must be set"))
	assert.Equal(t, "CONFIG_INVALID: DATABASE_URL must be set\n", buf.String())

	buf.Reset()
	printError(&buf, stderrors.New("plain"))
	assert.Equal(t, "plain\n", buf.String())
}
