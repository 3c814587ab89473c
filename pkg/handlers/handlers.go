// Package handlers provides the reference tools, resources and prompt served
// by mcp-stdio-server.
package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	mcperrors "github.com/ajitpratap0/mcp-stdio-server/pkg/errors"
	"github.com/ajitpratap0/mcp-stdio-server/pkg/logging"
	"github.com/ajitpratap0/mcp-stdio-server/pkg/server"
)

// Options configures the built-in handlers.
type Options struct {
	// AppName, Version and Environment are reported by the config:// resource.
	AppName     string
	Version     string
	Environment string

	// DataDir is the directory served under file:///data/.
	DataDir string

	Logger logging.Logger
}

func (o *Options) setDefaults() {
	if o.AppName == "" {
		o.AppName = "mcp-stdio-server"
	}
	if o.Version == "" {
		o.Version = "1.0.0"
	}
	if o.Environment == "" {
		o.Environment = "development"
	}
	if o.DataDir == "" {
		o.DataDir = "./data"
	}
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
}

// Builtins holds the reference handlers. Files is kept so that the caller
// can run its directory watcher.
type Builtins struct {
	Greet      *GreetTool
	BMI        *BMITool
	Weather    *WeatherTool
	Config     *ConfigResource
	Files      *FileResource
	ReviewCode *ReviewCodePrompt
}

// NewBuiltins creates the reference handlers.
func NewBuiltins(opts Options) *Builtins {
	opts.setDefaults()
	return &Builtins{
		Greet:      NewGreetTool(opts.Logger),
		BMI:        NewBMITool(opts.Logger),
		Weather:    NewWeatherTool(opts.Logger),
		Config:     NewConfigResource(opts),
		Files:      NewFileResource(opts.DataDir, opts.Logger),
		ReviewCode: NewReviewCodePrompt(opts.Logger),
	}
}

// Register adds the handlers to reg.
func (b *Builtins) Register(reg *server.Registry) error {
	registrations := []struct {
		group   server.Group
		name    string
		handler interface{}
	}{
		{server.GroupTools, GreetToolName, b.Greet},
		{server.GroupTools, BMIToolName, b.BMI},
		{server.GroupTools, WeatherToolName, b.Weather},
		{server.GroupResources, ConfigURIPrefix, b.Config},
		{server.GroupResources, FileURIPrefix, b.Files},
		{server.GroupPrompts, ReviewCodePromptName, b.ReviewCode},
	}

	for _, r := range registrations {
		if err := reg.Register(r.group, r.name, r.handler); err != nil {
			return fmt.Errorf("failed to register %s %q: %w", r.group, r.name, err)
		}
	}
	return nil
}

// RegisterBuiltins registers greet, calculate-bmi, fetch-weather, the
// config:// and file:///data/ resources and the review-code prompt.
func RegisterBuiltins(reg *server.Registry, opts Options) error {
	return NewBuiltins(opts).Register(reg)
}

// decodeArguments checks that every required member is present and not null,
// then decodes args into target. Wrong-typed members are reported by name.
func decodeArguments(args json.RawMessage, target interface{}, required ...string) error {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(args, &members); err != nil {
		return mcperrors.MalformedArguments(err)
	}
	for _, name := range required {
		raw, ok := members[name]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return mcperrors.MissingParameter(name)
		}
	}

	if err := json.Unmarshal(args, target); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return mcperrors.InvalidParameter(typeErr.Field, typeErr.Type.String())
		}
		return mcperrors.MalformedArguments(err)
	}
	return nil
}
