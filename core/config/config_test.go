package config

import (
	"bytes"
	"errors"
	"io/fs"
	"reflect"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

func TestBuiltinConfig(t *testing.T) {
	rawConfig := make(map[string]interface{})
	assert.Nil(t, yaml.Unmarshal(defaultConfigData, &rawConfig))

	knownFields := make(map[string]bool)
	rt := reflect.TypeOf(Configuration{})
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		assert.NotEmpty(t, jsonTag)
		jsonField := strings.Split(jsonTag, ",")[0]
		knownFields[jsonField] = true

		if _, ok := rawConfig[jsonField]; !ok {
			assert.False(t, true, "default config missing field: %q", jsonField)
		}
	}

	for k := range rawConfig {
		_, ok := knownFields[k]
		assert.True(t, ok, "default config contains invalid field: %q", k)
	}
}

func TestDefaultConfig(t *testing.T) {
	// Will panic() on load failure because it should never happen at runtime.
	cfg := Default()

	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "# ", cfg.Prompt)
	assert.True(t, cfg.EchoParsedLine)
	assert.Equal(t, ColorAuto, cfg.Color)
	assert.False(t, cfg.Debug)
	assert.Equal(t, 64, cfg.Allocator.GrowthPages)
}

func TestLoad(t *testing.T) {
	memFs := afero.NewMemMapFs()
	afero.WriteFile(memFs, "/etc/minish.yaml", []byte("prompt: \"$ \"\nallocator:\n  growth_pages: 8\n"), 0644)

	cfg, err := Load(memFs, "/etc/minish.yaml")
	require.NoError(t, err)

	assert.Equal(t, "$ ", cfg.Prompt)
	assert.Equal(t, 8, cfg.Allocator.GrowthPages)
	assert.True(t, cfg.EchoParsedLine, "unset values keep their defaults")
}

func TestLoad_errors(t *testing.T) {
	memFs := afero.NewMemMapFs()

	t.Run("missing", func(t *testing.T) {
		_, err := Load(memFs, "/nope.yaml")
		assert.True(t, errors.Is(err, fs.ErrNotExist))
	})

	t.Run("unknown field", func(t *testing.T) {
		afero.WriteFile(memFs, "/unknown.yaml", []byte("ssh_port: 22\n"), 0644)
		_, err := Load(memFs, "/unknown.yaml")
		assert.Error(t, err)
	})

	t.Run("invalid", func(t *testing.T) {
		afero.WriteFile(memFs, "/invalid.yaml", []byte("color: sometimes\nallocator:\n  growth_pages: 0\n"), 0644)
		_, err := Load(memFs, "/invalid.yaml")

		var verrs validator.ValidationErrors
		require.True(t, errors.As(err, &verrs))

		var fields []string
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		assert.ElementsMatch(t, []string{"color", "growth_pages"}, fields)
	})
}

func TestLoadFromEnv(t *testing.T) {
	memFs := afero.NewMemMapFs()
	afero.WriteFile(memFs, "/minish.yaml", []byte("debug: true\n"), 0644)

	t.Setenv(EnvConfig, "")
	cfg, err := LoadFromEnv(memFs)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	t.Setenv(EnvConfig, "/minish.yaml")
	cfg, err = LoadFromEnv(memFs)
	require.NoError(t, err)
	assert.True(t, cfg.Debug)
}

func TestConfiguration_ShouldColor(t *testing.T) {
	cases := []struct {
		color    string
		terminal bool
		want     bool
	}{
		{ColorAuto, true, true},
		{ColorAuto, false, false},
		{ColorAlways, false, true},
		{ColorNever, true, false},
	}

	for _, tc := range cases {
		cfg := &Configuration{Color: tc.color}
		assert.Equal(t, tc.want, cfg.ShouldColor(tc.terminal), "%s terminal=%v", tc.color, tc.terminal)
	}
}

func TestConfiguration_Logger(t *testing.T) {
	out := &bytes.Buffer{}

	(&Configuration{}).Logger(out).Print("hidden")
	assert.Empty(t, out.String())

	(&Configuration{Debug: true}).Logger(out).Print("shown")
	assert.Equal(t, "[minish] shown\n", out.String())
}
