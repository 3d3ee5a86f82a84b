package pipeline

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/mcncl/humlplay/internal/codec"
	"github.com/mcncl/humlplay/internal/models"
	"github.com/mcncl/humlplay/internal/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spyCodec wraps a codec and counts calls; it can be told to panic
type spyCodec struct {
	codec.Codec
	parses     int
	serializes int
	panicOn    string
}

func (s *spyCodec) Parse(text string) (models.Value, error) {
	s.parses++
	if s.panicOn == "parse" {
		panic("parser exploded")
	}
	return s.Codec.Parse(text)
}

func (s *spyCodec) Serialize(v models.Value) (string, error) {
	s.serializes++
	if s.panicOn == "serialize" {
		panic("serializer exploded")
	}
	return s.Codec.Serialize(v)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newConverter(tb testing.TB, opts ...Option) *Converter {
	tb.Helper()
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	conv, err := New(codec.NewRegistry(codec.DefaultOptions()), opts...)
	require.NoError(tb, err)
	return conv
}

func sampleValue() *models.Object {
	owner := models.NewObject()
	owner.Set("name", "Tom")
	owner.Set("admin", true)

	v := models.NewObject()
	v.Set("title", "example")
	v.Set("version", int64(3))
	v.Set("ratio", 0.25)
	v.Set("enabled", false)
	v.Set("tags", models.Array{"a", "b", "c"})
	v.Set("ports", models.Array{int64(80), int64(443)})
	v.Set("owner", owner)
	return v
}

func TestConvert_JSONToYAMLScenario(t *testing.T) {
	conv := newConverter(t)

	out := conv.Convert(models.Request{Content: `{"a":1}`, From: models.FormatJSON, To: models.FormatYAML})

	require.True(t, out.OK(), "unexpected failure: %s", out.Message)
	assert.Equal(t, "a: 1\n", out.Text)
}

func TestConvert_InvalidJSONScenario(t *testing.T) {
	conv := newConverter(t)

	out := conv.Convert(models.Request{Content: `{invalid}`, From: models.FormatJSON, To: models.FormatYAML})

	require.True(t, out.Failed)
	assert.Equal(t, models.SideSource, out.Side)
	assert.True(t, strings.HasPrefix(out.Message, "Parse error: "), out.Message)
	assert.Empty(t, out.Text)
}

func TestConvert_EmptyInputSkipsCodecs(t *testing.T) {
	reg := codec.NewRegistry(codec.DefaultOptions())
	spies := make(map[models.Format]*spyCodec)
	for _, f := range models.Formats {
		spy := &spyCodec{Codec: reg.MustResolve(f)}
		spies[f] = spy
		reg.Register(spy)
	}
	conv, err := New(reg, WithLogger(quietLogger()))
	require.NoError(t, err)

	for _, from := range models.Formats {
		for _, to := range models.Formats {
			out := conv.Convert(models.Request{Content: "", From: from, To: to})
			assert.Equal(t, models.Converted(""), out, "%s -> %s", from, to)
		}
	}
	for f, spy := range spies {
		assert.Zero(t, spy.parses, "parse called for %s", f)
		assert.Zero(t, spy.serializes, "serialize called for %s", f)
	}
}

func TestConvert_RoundTripAllPairs(t *testing.T) {
	conv := newConverter(t)
	reg := conv.Registry()
	v := sampleValue()

	for _, from := range models.Formats {
		for _, to := range models.Formats {
			t.Run(fmt.Sprintf("%s_to_%s", from, to), func(t *testing.T) {
				src, err := reg.MustResolve(from).Serialize(v)
				require.NoError(t, err)

				out := conv.Convert(models.Request{Content: src, From: from, To: to})
				require.True(t, out.OK(), "conversion failed: %s", out.Message)

				back, err := reg.MustResolve(to).Parse(out.Text)
				require.NoError(t, err)
				assert.True(t, models.Equal(v, back), "value changed:\n%s", out.Text)
			})
		}
	}
}

func TestConvert_MalformedSourceIsAlwaysSourceSide(t *testing.T) {
	conv := newConverter(t)

	malformed := map[models.Format]string{
		models.FormatJSON: `{"a": }`,
		models.FormatYAML: "a: [1, 2\n",
		models.FormatTOML: "a = \n",
		models.FormatHUML: "a: \"unterminated\n",
	}

	for from, text := range malformed {
		for _, to := range models.Formats {
			out := conv.Convert(models.Request{Content: text, From: from, To: to})
			require.True(t, out.Failed, "%s -> %s should fail", from, to)
			assert.Equal(t, models.SideSource, out.Side, "%s -> %s", from, to)
		}
	}
}

func TestConvert_HostileSourceFailsCleanly(t *testing.T) {
	conv := newConverter(t)

	tests := []struct {
		name    string
		content string
		from    models.Format
	}{
		{name: "self-referencing yaml anchor", content: "a: &x [*x]\n", from: models.FormatYAML},
		{name: "deeply nested json", content: strings.Repeat("[", 100_000), from: models.FormatJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := conv.Convert(models.Request{Content: tt.content, From: tt.from, To: models.FormatJSON})
			require.True(t, out.Failed)
			assert.Equal(t, models.SideSource, out.Side)
			assert.True(t, strings.HasPrefix(out.Message, "Parse error: "), out.Message)
		})
	}
}

func TestConvert_UnsupportedShapeIsTargetSide(t *testing.T) {
	conv := newConverter(t)

	tests := []struct {
		name    string
		content string
	}{
		{name: "null value", content: `{"a": null}`},
		{name: "array root", content: `[1, 2, 3]`},
		{name: "scalar root", content: `"just a string"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := conv.Convert(models.Request{Content: tt.content, From: models.FormatJSON, To: models.FormatTOML})
			require.True(t, out.Failed)
			assert.Equal(t, models.SideTarget, out.Side)
			assert.True(t, strings.HasPrefix(out.Message, "Serialize error: "), out.Message)
		})
	}
}

func TestConvert_KeyOrderPreserved(t *testing.T) {
	conv := newConverter(t)

	out := conv.Convert(models.Request{
		Content: `{"zebra": 1, "apple": {"y": true, "b": false}, "mango": "m"}`,
		From:    models.FormatJSON,
		To:      models.FormatYAML,
	})
	require.True(t, out.OK(), out.Message)
	assert.Equal(t, "zebra: 1\napple:\n  y: true\n  b: false\nmango: m\n", out.Text)

	back := conv.Convert(models.Request{Content: out.Text, From: models.FormatYAML, To: models.FormatJSON})
	require.True(t, back.OK(), back.Message)
	assert.Equal(t, "{\n  \"zebra\": 1,\n  \"apple\": {\n    \"y\": true,\n    \"b\": false\n  },\n  \"mango\": \"m\"\n}", back.Text)
}

func TestConvert_PanicsBecomeFailures(t *testing.T) {
	for _, tt := range []struct {
		panicOn string
		side    models.Side
	}{
		{panicOn: "parse", side: models.SideSource},
		{panicOn: "serialize", side: models.SideTarget},
	} {
		t.Run(tt.panicOn, func(t *testing.T) {
			reg := codec.NewRegistry(codec.DefaultOptions())
			reg.Register(&spyCodec{Codec: reg.MustResolve(models.FormatJSON), panicOn: tt.panicOn})
			conv, err := New(reg, WithLogger(quietLogger()))
			require.NoError(t, err)

			var out models.Outcome
			require.NotPanics(t, func() {
				out = conv.Convert(models.Request{Content: `{"a": 1}`, From: models.FormatJSON, To: models.FormatJSON})
			})
			require.True(t, out.Failed)
			assert.Equal(t, tt.side, out.Side)
			assert.Contains(t, out.Message, "exploded")
		})
	}
}

func TestConvert_Transforms(t *testing.T) {
	chain, err := transform.Build(transform.Options{KeyCase: "snake", Query: ".server"})
	require.NoError(t, err)
	conv := newConverter(t, WithTransforms(chain))

	out := conv.Convert(models.Request{
		Content: `{"server": {"hostName": "h", "listenPort": 80}}`,
		From:    models.FormatJSON,
		To:      models.FormatYAML,
	})
	require.True(t, out.OK(), out.Message)
	assert.Equal(t, "host_name: h\nlisten_port: 80\n", out.Text)

	bad, err := transform.Build(transform.Options{Query: `error("no")`})
	require.NoError(t, err)
	conv = newConverter(t, WithTransforms(bad))

	out = conv.Convert(models.Request{Content: `{"a": 1}`, From: models.FormatJSON, To: models.FormatYAML})
	require.True(t, out.Failed)
	assert.Equal(t, models.SideTarget, out.Side)
	assert.True(t, strings.HasPrefix(out.Message, "Transform error: "), out.Message)
}

func TestNew_RejectsIncompleteRegistry(t *testing.T) {
	reg := codec.NewEmptyRegistry()
	reg.Register(codec.NewJSONCodec(2, false))

	_, err := New(reg)
	require.Error(t, err)
}

func TestConvert_UnknownFormatIsReported(t *testing.T) {
	var logs bytes.Buffer
	conv, err := New(codec.NewRegistry(codec.DefaultOptions()), WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	require.NoError(t, err)

	out := conv.Convert(models.Request{Content: "a = 1", From: models.Format("ini"), To: models.FormatJSON})
	require.True(t, out.Failed)
	assert.Equal(t, models.SideSource, out.Side)
	assert.Contains(t, logs.String(), "codec lookup failed")
}
