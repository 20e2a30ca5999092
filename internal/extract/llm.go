package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/tripweave/tripweave/internal/itinerary"
	"github.com/tripweave/tripweave/pkg/logger"
)

// ErrNoToolCall is returned when the model replied without invoking the
// required extraction tool. There is no free-text fallback: the structured
// contract is mandatory.
var ErrNoToolCall = errors.New("model response did not invoke the extraction tool")

// ModelConfig represents configuration for the language-model strategy.
type ModelConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	MaxTokens      int
	Temperature    float64
	TimeoutSeconds int
}

// ModelBased is the language-model extraction strategy. It issues exactly
// one chat-completions call per request with a forced named tool choice and
// blocks on the response; transport or validation failures surface directly
// as request-level errors.
type ModelBased struct {
	client openai.Client
	config ModelConfig
	logger *logger.Logger
}

// NewModelBased creates the language-model extraction strategy
func NewModelBased(config ModelConfig, logger *logger.Logger) *ModelBased {
	if config.APIKey == "" {
		logger.Warn("OpenAI API key is empty - model-based parsing will not work")
	}

	opts := []option.RequestOption{option.WithAPIKey(config.APIKey)}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	return &ModelBased{
		client: openai.NewClient(opts...),
		config: config,
		logger: logger.Named("model-based"),
	}
}

// Ensure the strategy satisfies the shared contract
var _ itinerary.Strategy = (*ModelBased)(nil)

// toolPayload is the shape the extraction tool must be invoked with.
type toolPayload struct {
	Locations         []payloadLocation `json:"locations"`
	Days              []payloadDay      `json:"days"`
	Warnings          []string          `json:"warnings"`
	Suggestions       []string          `json:"suggestions"`
	DetectedTimezone  string            `json:"detectedTimezone"`
	DetectedGMTOffset string            `json:"detectedGmtOffset"`
}

type payloadLocation struct {
	Name         string  `json:"name"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	Category     string  `json:"category"`
	Confidence   string  `json:"confidence"`
	OriginalText string  `json:"originalText"`
}

type payloadDay struct {
	Date       string            `json:"date"`
	Title      string            `json:"title"`
	Activities []payloadActivity `json:"activities"`
}

type payloadActivity struct {
	LocationName string `json:"locationName"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
	Notes        string `json:"notes"`
	IsFlexible   bool   `json:"isFlexible"`
	OriginalText string `json:"originalText"`
}

// Parse delegates extraction to the reasoning service via the structured
// tool-call contract and post-processes the invocation into a ParseResult.
func (m *ModelBased) Parse(ctx context.Context, req itinerary.Request) (*itinerary.ParseResult, error) {
	if m.config.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(m.config.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(m.config.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(buildSystemPrompt(req.TripContext)),
			openai.UserMessage(buildUserInput(req)),
		},
		Tools: []openai.ChatCompletionToolParam{extractionTool()},
		// The model must answer through the tool, not free text
		ToolChoice: openai.ChatCompletionToolChoiceOptionUnionParam{
			OfChatCompletionNamedToolChoice: &openai.ChatCompletionNamedToolChoiceParam{
				Function: openai.ChatCompletionNamedToolChoiceFunctionParam{Name: extractToolName},
			},
		},
	}
	if m.config.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(m.config.MaxTokens))
	}
	if m.config.Temperature > 0 {
		params.Temperature = openai.Float(m.config.Temperature)
	}

	m.logger.Debug("Requesting model extraction",
		logger.String("model", m.config.Model),
		logger.Int("text_len", len(req.RawText)))

	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("model request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("model returned no choices")
	}

	payload, err := payloadFromResponse(resp)
	if err != nil {
		return nil, err
	}

	return m.assemble(payload)
}

// payloadFromResponse locates the required tool invocation and decodes its
// arguments. A response without the invocation is an unrecoverable failure
// for this request.
func payloadFromResponse(resp *openai.ChatCompletion) (*toolPayload, error) {
	for _, call := range resp.Choices[0].Message.ToolCalls {
		if call.Function.Name != extractToolName {
			continue
		}

		var payload toolPayload
		if err := json.Unmarshal([]byte(call.Function.Arguments), &payload); err != nil {
			return nil, fmt.Errorf("failed to decode tool arguments: %w", err)
		}
		return &payload, nil
	}

	return nil, ErrNoToolCall
}

// assemble normalizes the tool payload into the shared result shape:
// categories and confidences are validated, times re-normalized, locations
// deduplicated and given ids, activities linked by case-insensitive name.
func (m *ModelBased) assemble(payload *toolPayload) (*itinerary.ParseResult, error) {
	locations := make([]itinerary.ParsedLocation, 0, len(payload.Locations))
	for _, loc := range payload.Locations {
		category := itinerary.Category(loc.Category)
		if !itinerary.ValidCategory(category) {
			category = itinerary.InferCategory(loc.Name)
		}
		confidence := itinerary.Confidence(loc.Confidence)
		switch confidence {
		case itinerary.ConfidenceHigh, itinerary.ConfidenceMedium, itinerary.ConfidenceLow:
		default:
			confidence = itinerary.ConfidenceMedium
		}

		locations = append(locations, itinerary.ParsedLocation{
			Name:         loc.Name,
			Lat:          loc.Lat,
			Lng:          loc.Lng,
			Category:     category,
			Confidence:   confidence,
			OriginalText: loc.OriginalText,
		})
	}

	var pending []itinerary.PendingActivity
	warnings := payload.Warnings
	dayTitles := make(map[string]string)
	for _, day := range payload.Days {
		if day.Title != "" {
			dayTitles[day.Date] = day.Title
		}
		for _, act := range day.Activities {
			start := act.StartTime
			if !itinerary.IsValidTime(start) {
				start = itinerary.ParseTime(start)
			}
			end := act.EndTime
			if !itinerary.IsValidTime(end) {
				end = itinerary.AddHours(start, 2)
			}
			// Overnight spans are flagged, never represented by wraparound.
			if end < start {
				warnings = append(warnings,
					fmt.Sprintf("Entry %q ends before it starts - overnight stays are split per day, end time pinned to %s", act.LocationName, start))
				end = start
			}

			pending = append(pending, itinerary.PendingActivity{
				Date:         day.Date,
				LocationName: act.LocationName,
				StartTime:    start,
				EndTime:      end,
				Notes:        act.Notes,
				IsFlexible:   act.IsFlexible,
				OriginalText: act.OriginalText,
			})
		}
	}

	if len(pending) == 0 {
		return nil, itinerary.ErrNoActivities
	}

	result := itinerary.Assemble(locations, pending, dayTitles,
		warnings, payload.Suggestions,
		payload.DetectedGMTOffset, payload.DetectedTimezone)

	m.logger.Info("Model extraction assembled",
		logger.Int("days", len(result.Days)),
		logger.Int("locations", len(result.Locations)),
		logger.Int("warnings", len(result.Warnings)))

	return result, nil
}

// extractionTool declares the structured "return-this-shape" contract.
func extractionTool() openai.ChatCompletionToolParam {
	timeProp := map[string]any{"type": "string", "description": "Zero-padded 24-hour HH:MM"}

	return openai.ChatCompletionToolParam{
		Function: openai.FunctionDefinitionParam{
			Name:        extractToolName,
			Description: openai.String("Return the structured itinerary extracted from the input text"),
			Parameters: openai.FunctionParameters{
				"type": "object",
				"properties": map[string]any{
					"locations": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"name":         map[string]any{"type": "string"},
								"lat":          map[string]any{"type": "number"},
								"lng":          map[string]any{"type": "number"},
								"category":     map[string]any{"type": "string", "enum": []string{"restaurant", "attraction", "shopping", "nature", "temple", "hotel", "transport", "medical", "playground", "flight", "logistics", "flexible"}},
								"confidence":   map[string]any{"type": "string", "enum": []string{"high", "medium", "low"}},
								"originalText": map[string]any{"type": "string"},
							},
							"required": []string{"name", "lat", "lng", "category", "confidence"},
						},
					},
					"days": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"date":  map[string]any{"type": "string", "description": "YYYY-MM-DD"},
								"title": map[string]any{"type": "string"},
								"activities": map[string]any{
									"type": "array",
									"items": map[string]any{
										"type": "object",
										"properties": map[string]any{
											"locationName": map[string]any{"type": "string"},
											"startTime":    timeProp,
											"endTime":      timeProp,
											"notes":        map[string]any{"type": "string"},
											"isFlexible":   map[string]any{"type": "boolean"},
											"originalText": map[string]any{"type": "string"},
										},
										"required": []string{"startTime", "endTime"},
									},
								},
							},
							"required": []string{"date", "activities"},
						},
					},
					"warnings":          map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"suggestions":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"detectedTimezone":  map[string]any{"type": "string"},
					"detectedGmtOffset": map[string]any{"type": "string"},
				},
				"required": []string{"locations", "days"},
			},
		},
	}
}
