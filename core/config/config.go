package config

import (
	_ "embed"
	"io"
	"log"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"sigs.k8s.io/yaml"
)

var (
	//go:embed default/config.yaml
	defaultConfigData []byte
)

const (
	// EnvConfig names the variable holding the path of the configuration file.
	EnvConfig = "MINISH_CONFIG"

	ColorAlways = "always"
	ColorAuto   = "auto"
	ColorNever  = "never"

	// LogPrefix starts every debug log line.
	LogPrefix = "[minish] "
)

type Configuration struct {
	Prompt         string `json:"prompt"`
	EchoParsedLine bool   `json:"echo_parsed_line"`
	Color          string `json:"color" validate:"oneof=auto always never"`
	Debug          bool   `json:"debug"`

	Allocator Allocator `json:"allocator"`
}

type Allocator struct {
	GrowthPages int `json:"growth_pages" validate:"gte=1"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

// ShouldColor reports whether output should be colored given whether it is
// going to a terminal.
func (c *Configuration) ShouldColor(isTerminal bool) bool {
	switch c.Color {
	case ColorNever:
		return false
	case ColorAlways:
		return true
	default:
		return isTerminal
	}
}

// Logger returns the debug logger, writing to w when debugging is enabled
// and discarding everything otherwise.
func (c *Configuration) Logger(w io.Writer) *log.Logger {
	if !c.Debug {
		w = io.Discard
	}
	return log.New(w, LogPrefix, 0)
}

// Default returns the built in configuration.
func Default() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}
