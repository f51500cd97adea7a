package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/invopop/jsonschema"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/code4ward/JSOI/value"
)

// Load reads a config file over Default. The format follows the extension:
// .toml, .yaml, .yml or .json.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data, strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data in the given format ("toml", "yaml", "yml" or "json")
// over Default.
func Parse(data []byte, format string) (Config, error) {
	raw, err := decodeRaw(data, strings.ToLower(format))
	if err != nil {
		return Config{}, err
	}
	return FromMap(raw)
}

func decodeRaw(data []byte, format string) (map[string]any, error) {
	raw := map[string]any{}
	switch format {
	case "toml":
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	case "json":
		if len(strings.TrimSpace(string(data))) == 0 {
			return raw, nil
		}
		v, err := value.ParseJSON(data)
		if err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		m, ok := value.Plain(v).(map[string]any)
		if !ok {
			return nil, fmt.Errorf("decode json: top level must be an object, got %s", value.KindOf(v))
		}
		raw = m
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return raw, nil
}

// FromMap decodes m over Default.
func FromMap(m map[string]any) (Config, error) {
	cfg := Default()
	if err := cfg.Apply(m); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Apply decodes m over c. Keys follow the mapstructure tags; unknown keys
// are an error and durations may be strings such as "250ms".
func (c *Config) Apply(m map[string]any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           c,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(m); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

var durationType = reflect.TypeOf(time.Duration(0))

// Schema returns the JSON Schema of a config file.
func Schema() ([]byte, error) {
	r := &jsonschema.Reflector{
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == durationType {
				return &jsonschema.Schema{
					Type:        "string",
					Pattern:     `^([0-9]+(\.[0-9]+)?(ns|us|µs|ms|s|m|h))+$`,
					Description: `Go duration such as "5s"`,
				}
			}
			return nil
		},
	}
	s := r.Reflect(&Config{})
	s.Title = "jsoi configuration"
	return json.MarshalIndent(s, "", "  ")
}
