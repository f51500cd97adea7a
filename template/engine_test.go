package template

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/code4ward/JSOI/lookup"
	"github.com/code4ward/JSOI/tag"
	"github.com/code4ward/JSOI/value"
)

func TestEngine_Interpolate(t *testing.T) {
	values := lookup.Map{
		"name":    "World",
		"greet":   "Hi",
		"port":    8080,
		"ratio":   1.12,
		"enabled": true,
		"nothing": nil,
		"id":      7,
		"user_7":  "Ada",
		"list":    []any{1, "a"},
		"obj":     map[string]any{"k": "v"},
	}

	tests := []struct {
		name         string
		template     string
		want         any
		wantReplaced int
	}{
		{name: "no tags", template: "plain text", want: "plain text"},
		{name: "empty", template: "", want: ""},
		{name: "single variable", template: "Hello, {{name}}!", want: "Hello, World!", wantReplaced: 1},
		{name: "spaced key", template: "Hello, {{  name }}!", want: "Hello, World!", wantReplaced: 1},
		{name: "multiple variables", template: "{{greet}}, {{name}}!", want: "Hi, World!", wantReplaced: 2},
		{name: "missing kept", template: "Hello, {{who}}!", want: "Hello, {{who}}!"},
		{name: "number preserved", template: "{{port}}", want: 8080.0, wantReplaced: 1},
		{name: "bool preserved", template: "{{enabled}}", want: true, wantReplaced: 1},
		{name: "null preserved", template: "{{nothing}}", want: nil, wantReplaced: 1},
		{name: "number in text", template: "port={{port}} ratio={{ratio}}", want: "port=8080 ratio=1.12", wantReplaced: 2},
		{name: "null in text", template: "v={{nothing}}", want: "v=null", wantReplaced: 1},
		{name: "array in text", template: "list={{list}}", want: `list=[1,"a"]`, wantReplaced: 1},
		{name: "object in text", template: "obj={{obj}}", want: `obj={"k":"v"}`, wantReplaced: 1},
		{name: "innermost first", template: "{{user_{{id}}}}", want: "{{user_7}}", wantReplaced: 1},
		{name: "unclosed tag", template: "{{name", want: "{{name"},
	}

	e := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := e.Interpolate(context.Background(), tt.template, values)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Value)
			assert.Equal(t, tt.wantReplaced, res.Replaced)
		})
	}
}

func TestEngine_Interpolate_StructuredPreserved(t *testing.T) {
	values := lookup.Map{"obj": map[string]any{"b": 1, "a": []any{true}}}

	res, err := New().Interpolate(context.Background(), "{{obj}}", values)
	require.NoError(t, err)
	obj, ok := res.Value.(*value.Object)
	require.True(t, ok, "got %T", res.Value)
	assert.Equal(t, []string{"a", "b"}, obj.Keys())

	res, err = New(WithTypePreservation(false)).Interpolate(context.Background(), "{{obj}}", values)
	require.NoError(t, err)
	assert.Equal(t, `{"a":[true],"b":1}`, res.Value)
}

func TestEngine_Interpolate_Idempotent(t *testing.T) {
	e := New()
	values := lookup.Map{"a": "x"}
	first, err := e.Interpolate(context.Background(), "{{a}} and {{b}}", values)
	require.NoError(t, err)
	second, err := e.Interpolate(context.Background(), first.String(), values)
	require.NoError(t, err)
	assert.Equal(t, first.Value, second.Value)
	assert.Zero(t, second.Replaced)
}

func TestEngine_Interpolate_EnclosureTracking(t *testing.T) {
	values := lookup.Map{`{"a": {"b": 1}}`: "json key"}

	res, err := New(WithEnclosureTracking(true)).Interpolate(context.Background(), `{{{"a": {"b": 1}}}}`, values)
	require.NoError(t, err)
	assert.Equal(t, "json key", res.Value)

	_, err = New(WithEnclosureTracking(true)).Interpolate(context.Background(), "{{a}} {", values)
	require.ErrorIs(t, err, tag.ErrUnbalanced)

	res, err = New().Interpolate(context.Background(), "{{a}} {", lookup.Map{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, "1 {", res.Value)
}

func TestEngine_NotFound(t *testing.T) {
	tests := []struct {
		name         string
		handler      NotFoundFunc
		want         any
		wantReplaced int
	}{
		{
			name: "substitutes",
			handler: func(_ context.Context, _, key string) (any, error) {
				return strings.ToUpper(key), nil
			},
			want:         "A-B",
			wantReplaced: 2,
		},
		{
			name: "keeps match text",
			handler: func(_ context.Context, text, _ string) (any, error) {
				return text, nil
			},
			want: "{{a}}-{{ b }}",
		},
		{
			name: "native value",
			handler: func(context.Context, string, string) (any, error) {
				return 3, nil
			},
			want:         "3-3",
			wantReplaced: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(WithNotFound(tt.handler))
			res, err := e.Interpolate(context.Background(), "{{a}}-{{ b }}", nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Value)
			assert.Equal(t, tt.wantReplaced, res.Replaced)
		})
	}
}

func TestEngine_NotFound_Error(t *testing.T) {
	boom := errors.New("boom")
	e := New(WithNotFound(func(context.Context, string, string) (any, error) {
		return nil, boom
	}))

	_, err := e.Interpolate(context.Background(), "x {{missing}}", lookup.Map{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFoundHandler)
	assert.ErrorIs(t, err, boom)

	var handlerErr *HandlerError
	require.ErrorAs(t, err, &handlerErr)
	assert.Equal(t, "{{missing}}", handlerErr.Tag)
}

func TestEngine_Resolve_OverridesHandler(t *testing.T) {
	e := New(WithNotFound(func(context.Context, string, string) (any, error) {
		return "engine", nil
	}))
	res, err := e.Resolve(context.Background(), "{{x}}", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "{{x}}", res.Value)
}

func delayed(d time.Duration, v any) *value.Deferred {
	return value.Defer(func(ctx context.Context) (any, error) {
		select {
		case <-time.After(d):
			return v, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})
}

func TestEngine_Deferred(t *testing.T) {
	t.Run("whole template keeps native type", func(t *testing.T) {
		values := lookup.Map{"n": value.Resolved(42)}
		res, err := New().Interpolate(context.Background(), "{{n}}", values)
		require.NoError(t, err)
		assert.Equal(t, 42.0, res.Value)
		assert.Equal(t, 1, res.Replaced)
	})

	t.Run("batched latency", func(t *testing.T) {
		values := lookup.Map{
			"a": delayed(60*time.Millisecond, "A"),
			"b": delayed(60*time.Millisecond, "B"),
			"c": delayed(60*time.Millisecond, "C"),
		}
		start := time.Now()
		res, err := New().Interpolate(context.Background(), "{{a}}{{b}}{{c}}", values)
		elapsed := time.Since(start)

		require.NoError(t, err)
		assert.Equal(t, "ABC", res.Value)
		assert.Equal(t, 3, res.Replaced)
		assert.Less(t, elapsed, 150*time.Millisecond, "deferred values must settle concurrently")
	})

	t.Run("partial failure", func(t *testing.T) {
		values := lookup.Map{
			"a": value.Resolved(1),
			"b": value.Rejected(errors.New("unavailable")),
			"c": delayed(10*time.Millisecond, 3),
		}
		res, err := New().Interpolate(context.Background(), "{{a}}-{{ b }}-{{c}}", values)
		require.NoError(t, err)
		assert.Equal(t, "1-{{ b }}-3", res.Value)
		assert.Equal(t, 2, res.Replaced)
	})

	t.Run("chained deferred", func(t *testing.T) {
		values := lookup.Map{"a": value.Defer(func(context.Context) (any, error) {
			return value.Resolved("inner"), nil
		})}
		res, err := New().Interpolate(context.Background(), "<{{a}}>", values)
		require.NoError(t, err)
		assert.Equal(t, "<inner>", res.Value)
		assert.Equal(t, 1, res.Replaced)
	})

	t.Run("from not-found handler", func(t *testing.T) {
		e := New(WithNotFound(func(_ context.Context, _, key string) (any, error) {
			return value.Resolved("late " + key), nil
		}))
		res, err := e.Interpolate(context.Background(), "{{x}}!", nil)
		require.NoError(t, err)
		assert.Equal(t, "late x!", res.Value)
		assert.Equal(t, 1, res.Replaced)
	})

	t.Run("shared deferred runs once", func(t *testing.T) {
		var calls atomic.Int32
		d := value.Defer(func(context.Context) (any, error) {
			calls.Add(1)
			return "v", nil
		})
		res, err := New().Interpolate(context.Background(), "{{a}} {{a}}", lookup.Map{"a": d})
		require.NoError(t, err)
		assert.Equal(t, "v v", res.Value)
		assert.Equal(t, int32(1), calls.Load())
	})
}

func TestEngine_SettleTimeout(t *testing.T) {
	values := lookup.Map{
		"slow": delayed(time.Second, "late"),
		"fast": value.Resolved("ok"),
	}
	start := time.Now()
	res, err := New(WithSettleTimeout(30*time.Millisecond)).Interpolate(context.Background(), "{{fast}} {{slow}}", values)
	require.NoError(t, err)
	assert.Equal(t, "ok {{slow}}", res.Value)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestEngine_SettleTimeout_Retry(t *testing.T) {
	values := lookup.Map{"slow": delayed(60*time.Millisecond, "late")}

	res, err := New(WithSettleTimeout(10*time.Millisecond)).Interpolate(context.Background(), "{{slow}}", values)
	require.NoError(t, err)
	assert.Equal(t, "{{slow}}", res.Value)

	res, err = New().Interpolate(context.Background(), "{{slow}}", values)
	require.NoError(t, err)
	assert.Equal(t, "late", res.Value)
	assert.Equal(t, 1, res.Replaced)
}

func TestEngine_SettleCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := New().Interpolate(ctx, "{{slow}}", lookup.Map{"slow": delayed(time.Second, 1)})
	require.ErrorIs(t, err, ErrSettle)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_SettleSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	e := New(WithTracer(provider.Tracer("test")), WithLogger(logger))
	values := lookup.Map{
		"a": value.Resolved("x"),
		"b": value.Rejected(errors.New("nope")),
	}
	_, err := e.Interpolate(context.Background(), "{{a}}{{b}}", values)
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "jsoi.template.settle", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.Int("jsoi.batch.size", 2))
	assert.Contains(t, spans[0].Attributes(), attribute.Int("jsoi.batch.rejected", 1))

	assert.Contains(t, logs.String(), "deferred value rejected")
	assert.Contains(t, logs.String(), "tag={{b}}")
}

func TestEngine_FunctionTags(t *testing.T) {
	e := New(WithFunctions(Functions()))
	values := lookup.Map{"name": "ada", "title": ""}

	tests := []struct {
		template string
		want     any
	}{
		{template: "{{-> upper(lookup(name))}}", want: "ADA"},
		{template: "{{-> default(lookup(title), 'untitled')}}", want: "untitled"},
		{template: "{{-> Exp('2 * 21')}}", want: 42.0},
		{template: "n={{->ƒ('1 + 1')}}", want: "n=2"},
		{template: "{{-> json([1, {\"a\": null}])}}", want: `[1,{"a":null}]`},
	}
	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			res, err := e.Interpolate(context.Background(), tt.template, values)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Value)
			assert.Equal(t, 1, res.Replaced)
		})
	}

	res, err := New().Interpolate(context.Background(), "{{-> upper('x')}}", values)
	require.NoError(t, err)
	assert.Equal(t, "{{-> upper('x')}}", res.Value, "function tags need WithFunctions")

	_, err = e.Interpolate(context.Background(), "{{-> upper(name}}", values)
	require.Error(t, err)
}

func TestEngine_FunctionTags_StrictQuoting(t *testing.T) {
	e := New(WithFunctions(Functions()), WithStrictQuoting(true))
	_, err := e.Interpolate(context.Background(), "{{-> upper(name)}}", nil)
	require.Error(t, err)
}

func TestEngine_Render(t *testing.T) {
	e := New()
	got, err := e.Render(context.Background(), "{{port}}", map[string]any{"port": 80})
	require.NoError(t, err)
	assert.Equal(t, "80", got)

	got, err = e.Render(context.Background(), "Hello, World!", nil)
	require.NoError(t, err)
	assert.Equal(t, "Hello, World!", got)
}

func TestEngine_Variables(t *testing.T) {
	e := New()
	vars, err := e.Variables("{{greeting}}, {{ name }}! {{name}} {{user_{{id}}}}")
	require.NoError(t, err)
	assert.Equal(t, []string{"greeting", "name", "id"}, vars)

	vars, err = e.Variables("no tags")
	require.NoError(t, err)
	assert.Empty(t, vars)
}

func TestValidateVariables(t *testing.T) {
	err := ValidateVariables([]string{"a", "b", "c"}, lookup.Map{"b": 1})
	require.ErrorIs(t, err, ErrVariable)
	var missing *MissingError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"a", "c"}, missing.Names)

	assert.NoError(t, ValidateVariables([]string{"a"}, lookup.Map{"a": nil}))
	assert.NoError(t, ValidateVariables(nil, nil))
}

func TestPlaceholders(t *testing.T) {
	p := NewPlaceholders()
	seen := make(map[string]bool)
	for range 100 {
		key := p.Next()
		assert.False(t, seen[key], "duplicate key %s", key)
		seen[key] = true
		assert.True(t, IsPlaceholder(key))
		assert.NotContains(t, key, "{")
		assert.NotContains(t, key, "}")
	}

	other := NewPlaceholders()
	assert.NotEqual(t, p.Next(), other.Next(), "generators must not share keys")
	assert.False(t, IsPlaceholder("name"))
}
