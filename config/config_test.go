package config

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code4ward/JSOI/lookup"
	"github.com/code4ward/JSOI/template"
	"github.com/code4ward/JSOI/tree"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.True(t, cfg.TrackEnclosures)
	assert.True(t, cfg.PreserveTypes)
	assert.Equal(t, "none", cfg.NotFound)
	assert.Equal(t, tree.DefaultMaxRounds, cfg.MaxRounds)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "throw", mutate: func(c *Config) { c.NotFound = "throw" }},
		{name: "upper case action", mutate: func(c *Config) { c.NotFound = "DELETE" }},
		{name: "unknown action", mutate: func(c *Config) { c.NotFound = "explode" }, wantErr: true},
		{name: "negative rounds", mutate: func(c *Config) { c.MaxRounds = -1 }, wantErr: true},
		{name: "debug level", mutate: func(c *Config) { c.LogLevel = "debug" }},
		{name: "bad level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: true},
		{name: "negative timeout", mutate: func(c *Config) { c.SettleTimeout = -time.Second }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("JSOI_TRACK_ENCLOSURES", "false")
	t.Setenv("JSOI_DUPLICATE", "1")
	t.Setenv("JSOI_NOT_FOUND", "delete")
	t.Setenv("JSOI_SEPARATOR", "¤")
	t.Setenv("JSOI_MAX_ROUNDS", "3")
	t.Setenv("JSOI_LOG_LEVEL", "warn")
	t.Setenv("JSOI_SETTLE_TIMEOUT", "250ms")
	t.Setenv("JSOI_PRESERVE_TYPES", "not-a-bool")

	cfg := FromEnv()

	assert.False(t, cfg.TrackEnclosures)
	assert.True(t, cfg.PreserveTypes, "unparsable values are ignored")
	assert.True(t, cfg.Duplicate)
	assert.Equal(t, tree.ActionDelete, cfg.Action())
	assert.Equal(t, "¤", cfg.Separator)
	assert.Equal(t, 3, cfg.MaxRounds)
	assert.Equal(t, slog.LevelWarn, cfg.Level())
	assert.Equal(t, 250*time.Millisecond, cfg.SettleTimeout)
}

func TestLoad(t *testing.T) {
	want := Default()
	want.NotFound = "throw"
	want.Separator = "."
	want.MaxRounds = 4
	want.SettleTimeout = 5 * time.Second
	want.TrackEnclosures = false

	files := map[string]string{
		"jsoi.toml": `
not_found = "throw"
separator = "."
max_rounds = 4
settle_timeout = "5s"
track_enclosures = false
`,
		"jsoi.yaml": `
not_found: throw
separator: "."
max_rounds: 4
settle_timeout: 5s
track_enclosures: false
`,
		"jsoi.json": `{"not_found": "throw", "separator": ".", "max_rounds": 4, "settle_timeout": "5s", "track_enclosures": false}`,
	}

	dir := t.TempDir()
	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			cfg, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, want, cfg)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	_, err := Load(write("jsoi.ini", "x=1"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Load(write("typo.yaml", "not_fund: throw\n"))
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = Load(write("array.json", `[1, 2]`))
	assert.Error(t, err)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	cfg, err := Load(write("empty.json", ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestFromMap_Weak(t *testing.T) {
	cfg, err := FromMap(map[string]any{
		"duplicate":      "true",
		"max_rounds":     "7",
		"settle_timeout": "1m",
	})
	require.NoError(t, err)
	assert.True(t, cfg.Duplicate)
	assert.Equal(t, 7, cfg.MaxRounds)
	assert.Equal(t, time.Minute, cfg.SettleTimeout)
}

func TestConfig_TreeOptions(t *testing.T) {
	cfg := Default()
	cfg.NotFound = "delete"
	cfg.Separator = "."

	root := map[string]any{
		"server": map[string]any{"port": 8080},
		"addr":   ":{{server.port}}",
		"gone":   "{{missing}}",
	}
	res, err := tree.Interpolate(context.Background(), root, nil, cfg.TreeOptions()...)
	require.NoError(t, err)

	got, _ := json.Marshal(res.Tree)
	assert.JSONEq(t, `{"server": {"port": 8080}, "addr": ":8080"}`, string(got))
}

func TestConfig_TemplateOptions(t *testing.T) {
	cfg := Default()
	cfg.PreserveTypes = false

	e := template.New(cfg.TemplateOptions()...)
	res, err := e.Interpolate(context.Background(), "{{n}}", lookup.Map{"n": 42})
	require.NoError(t, err)
	assert.Equal(t, "42", res.Value)

	e = template.New(cfg.TemplateOptions(template.WithTypePreservation(true))...)
	res, err = e.Interpolate(context.Background(), "{{n}}", lookup.Map{"n": 42})
	require.NoError(t, err)
	assert.Equal(t, 42.0, res.Value, "extra options win")
}

func TestSchema(t *testing.T) {
	data, err := Schema()
	require.NoError(t, err)

	var doc struct {
		Title                string                    `json:"title"`
		Required             []string                  `json:"required"`
		AdditionalProperties *bool                     `json:"additionalProperties"`
		Properties           map[string]map[string]any `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, "jsoi configuration", doc.Title)
	assert.Empty(t, doc.Required)
	require.NotNil(t, doc.AdditionalProperties)
	assert.False(t, *doc.AdditionalProperties)
	assert.Equal(t, "string", doc.Properties["settle_timeout"]["type"])
	assert.ElementsMatch(t, []any{"none", "delete", "throw"}, doc.Properties["not_found"]["enum"])
	assert.Contains(t, doc.Properties, "max_rounds")
}
