package main

import (
	"bytes"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mcncl/humlplay/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestContext returns a context writing to buffers, with an empty config
// file so the tests never pick up a config from the working tree
func newTestContext(t *testing.T) (*Context, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), ".humlplay.yml")
	require.NoError(t, os.WriteFile(configPath, []byte("output:\n  color: never\n"), 0o644))

	var stdout, stderr bytes.Buffer
	return &Context{
		Globals: &Globals{Config: configPath},
		Stdout:  &stdout,
		Stderr:  &stderr,
	}, &stdout, &stderr
}

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultArgs(t *testing.T) {
	assert.Equal(t, []string{"play"}, defaultArgs(nil, true))
	assert.Empty(t, defaultArgs(nil, false))
	assert.Equal(t, []string{"-t", "yaml"}, defaultArgs([]string{"-t", "yaml"}, true))
}

func TestConvert_JSONFileToYAML(t *testing.T) {
	ctx, stdout, _ := newTestContext(t)

	cmd := &ConvertCmd{Input: writeInput(t, "data.json", `{"name": "John", "age": 30, "active": true}`), To: "yaml"}
	require.NoError(t, cmd.Run(ctx))

	assert.Equal(t, "name: John\nage: 30\nactive: true\n", stdout.String())
}

func TestConvert_WithOutputFile(t *testing.T) {
	ctx, stdout, stderr := newTestContext(t)
	output := filepath.Join(t.TempDir(), "out.json")

	cmd := &ConvertCmd{
		Input:  writeInput(t, "config.toml", "[server]\nhost = \"localhost\"\nport = 8080\n"),
		Output: output,
		To:     "json",
	}
	require.NoError(t, cmd.Run(ctx))

	content, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"server\": {\n    \"host\": \"localhost\",\n    \"port\": 8080\n  }\n}\n", string(content))
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "Converted output written to")
}

func TestConvert_ExplicitFromOverridesExtension(t *testing.T) {
	ctx, stdout, _ := newTestContext(t)

	cmd := &ConvertCmd{Input: writeInput(t, "data.txt", "a: 1\n"), From: "yaml", To: "json"}
	require.NoError(t, cmd.Run(ctx))
	assert.Equal(t, "{\n  \"a\": 1\n}\n", stdout.String())
}

func TestConvert_FromStdin(t *testing.T) {
	ctx, stdout, _ := newTestContext(t)

	r, w, err := os.Pipe()
	require.NoError(t, err)
	_, err = w.WriteString(`{"userName": "ada"}`)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	defer func() { _ = r.Close() }()
	ctx.Stdin = r

	cmd := &ConvertCmd{From: "json", To: "yaml", KeyCase: "snake"}
	require.NoError(t, cmd.Run(ctx))
	assert.Equal(t, "user_name: ada\n", stdout.String())
}

func TestConvert_Query(t *testing.T) {
	ctx, stdout, _ := newTestContext(t)

	cmd := &ConvertCmd{
		Input: writeInput(t, "data.json", `{"items": [{"id": 1}, {"id": 2}]}`),
		To:    "json",
		Query: "[.items[].id]",
	}
	require.NoError(t, cmd.Run(ctx))
	assert.Equal(t, "[\n  1,\n  2\n]\n", stdout.String())
}

func TestConvert_RepairFlag(t *testing.T) {
	input := writeInput(t, "broken.json", `{"a": 1,}`)

	ctx, _, _ := newTestContext(t)
	err := (&ConvertCmd{Input: input, To: "yaml"}).Run(ctx)
	require.Error(t, err)

	ctx, stdout, _ := newTestContext(t)
	require.NoError(t, (&ConvertCmd{Input: input, To: "yaml", Repair: true}).Run(ctx))
	assert.Equal(t, "a: 1\n", stdout.String())
}

func TestConvert_Failures(t *testing.T) {
	tests := []struct {
		name    string
		cmd     ConvertCmd
		content string
		file    string
		prefix  string
	}{
		{name: "parse error", file: "bad.json", content: `{invalid}`, cmd: ConvertCmd{To: "yaml"}, prefix: "Parse error: "},
		{name: "serialize error", file: "null.json", content: `{"a": null}`, cmd: ConvertCmd{To: "toml"}, prefix: "Serialize error: "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, stdout, _ := newTestContext(t)
			tt.cmd.Input = writeInput(t, tt.file, tt.content)

			err := tt.cmd.Run(ctx)
			require.Error(t, err)
			assert.True(t, stderrors.Is(err, &errors.AppError{Type: errors.ErrorTypeConversion}))
			assert.Contains(t, errors.UserFriendlyError(err), tt.prefix)
			assert.Empty(t, stdout.String())
		})
	}
}

func TestConvert_InputErrors(t *testing.T) {
	ctx, _, _ := newTestContext(t)

	err := (&ConvertCmd{Input: filepath.Join(t.TempDir(), "missing.json"), To: "yaml"}).Run(ctx)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrFileNotFound))

	err = (&ConvertCmd{Input: writeInput(t, "data.json", "{}"), To: "xml"}).Run(ctx)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, &errors.AppError{Type: errors.ErrorTypeConfig}))
	assert.Contains(t, errors.UserFriendlyError(err), "Configuration error")
}

func TestConvert_ColorAlways(t *testing.T) {
	ctx, stdout, _ := newTestContext(t)

	cmd := &ConvertCmd{Input: writeInput(t, "data.json", `{"a": 1}`), To: "yaml", Color: "always"}
	require.NoError(t, cmd.Run(ctx))
	assert.Contains(t, stdout.String(), "\x1b[")
}

func TestFormats(t *testing.T) {
	ctx, stdout, _ := newTestContext(t)

	require.NoError(t, (&FormatsCmd{}).Run(ctx))
	assert.Equal(t, "huml  .huml\njson  .json\nyaml  .yaml, .yml\ntoml  .toml\n", stdout.String())
}
