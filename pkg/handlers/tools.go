package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ajitpratap0/mcp-stdio-server/pkg/logging"
	"github.com/ajitpratap0/mcp-stdio-server/pkg/protocol"
	"github.com/ajitpratap0/mcp-stdio-server/pkg/utils"
)

// Tool names.
const (
	GreetToolName   = "greet"
	BMIToolName     = "calculate-bmi"
	WeatherToolName = "fetch-weather"
)

// GreetArgs are the arguments of the greet tool.
type GreetArgs struct {
	Name string `json:"name" jsonschema:"description=The name of the person to greet"`
}

// GreetTool greets a person by name.
type GreetTool struct {
	logger logging.Logger
}

// NewGreetTool creates the greet tool.
func NewGreetTool(logger logging.Logger) *GreetTool {
	return &GreetTool{logger: logger.WithFields(logging.String("component", "GreetTool"))}
}

// Tool describes the greet tool.
func (t *GreetTool) Tool() protocol.Tool {
	return protocol.Tool{
		Name:        GreetToolName,
		Description: "Greets a person with a friendly message",
		InputSchema: utils.MustGenerateJSONSchema[GreetArgs](),
		Annotations: &protocol.ToolAnnotations{Title: "Greet Tool", ReadOnlyHint: true},
	}
}

// Call returns "Hello, <name>! Welcome to MCP.".
func (t *GreetTool) Call(ctx context.Context, arguments json.RawMessage) (*protocol.CallToolResult, error) {
	var args GreetArgs
	if err := decodeArguments(arguments, &args, "name"); err != nil {
		return nil, err
	}

	t.logger.WithContext(ctx).Debug("Greeting", logging.String("name", args.Name))
	return protocol.NewToolResult(protocol.NewTextContent(fmt.Sprintf("Hello, %s! Welcome to MCP.", args.Name))), nil
}

// BMIArgs are the arguments of the calculate-bmi tool.
type BMIArgs struct {
	WeightKg float64 `json:"weightKg" jsonschema:"description=Weight in kilograms"`
	HeightM  float64 `json:"heightM" jsonschema:"description=Height in meters,minimum=0.1"`
}

// BMITool calculates the body mass index.
type BMITool struct {
	logger logging.Logger
}

// NewBMITool creates the calculate-bmi tool.
func NewBMITool(logger logging.Logger) *BMITool {
	return &BMITool{logger: logger.WithFields(logging.String("component", "BMITool"))}
}

// Tool describes the calculate-bmi tool.
func (t *BMITool) Tool() protocol.Tool {
	return protocol.Tool{
		Name:        BMIToolName,
		Description: "Calculates Body Mass Index from weight and height",
		InputSchema: utils.MustGenerateJSONSchema[BMIArgs](),
		Annotations: &protocol.ToolAnnotations{Title: "BMI Calculator", ReadOnlyHint: true},
	}
}

// Call returns "BMI: <value>" with two decimals. A height that is not
// positive is reported as a tool-level failure.
func (t *BMITool) Call(ctx context.Context, arguments json.RawMessage) (*protocol.CallToolResult, error) {
	var args BMIArgs
	if err := decodeArguments(arguments, &args, "weightKg", "heightM"); err != nil {
		return nil, err
	}
	if args.HeightM <= 0 {
		return protocol.NewToolErrorResult("Height must be positive"), nil
	}

	t.logger.WithContext(ctx).Debug("Calculating BMI",
		logging.Any("weight_kg", args.WeightKg),
		logging.Any("height_m", args.HeightM))

	bmi := args.WeightKg / (args.HeightM * args.HeightM)
	return protocol.NewToolResult(protocol.NewTextContent(fmt.Sprintf("BMI: %.2f", bmi))), nil
}

// WeatherArgs are the arguments of the fetch-weather tool.
type WeatherArgs struct {
	City string `json:"city" jsonschema:"description=The city name"`
}

// WeatherReport is the canned report returned for every city.
type WeatherReport struct {
	City        string `json:"city"`
	Temperature string `json:"temperature"`
	Condition   string `json:"condition"`
	Humidity    string `json:"humidity"`
	WindSpeed   string `json:"windSpeed"`
}

// WeatherTool returns a canned weather report.
type WeatherTool struct {
	logger logging.Logger
}

// NewWeatherTool creates the fetch-weather tool.
func NewWeatherTool(logger logging.Logger) *WeatherTool {
	return &WeatherTool{logger: logger.WithFields(logging.String("component", "WeatherTool"))}
}

// Tool describes the fetch-weather tool.
func (t *WeatherTool) Tool() protocol.Tool {
	return protocol.Tool{
		Name:        WeatherToolName,
		Description: "Fetches weather information for a given city",
		InputSchema: utils.MustGenerateJSONSchema[WeatherArgs](),
		Annotations: &protocol.ToolAnnotations{Title: "Fetch Weather", ReadOnlyHint: true, OpenWorldHint: true},
	}
}

// Call returns "Weather for <city>:" followed by the indented report.
func (t *WeatherTool) Call(ctx context.Context, arguments json.RawMessage) (*protocol.CallToolResult, error) {
	var args WeatherArgs
	if err := decodeArguments(arguments, &args, "city"); err != nil {
		return nil, err
	}

	t.logger.WithContext(ctx).Debug("Fetching weather", logging.String("city", args.City))

	report, err := json.MarshalIndent(WeatherReport{
		City:        args.City,
		Temperature: "72°F",
		Condition:   "Partly Cloudy",
		Humidity:    "65%",
		WindSpeed:   "10 mph",
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode weather report: %w", err)
	}

	return protocol.NewToolResult(protocol.NewTextContent(fmt.Sprintf("Weather for %s:\n%s", args.City, report))), nil
}
