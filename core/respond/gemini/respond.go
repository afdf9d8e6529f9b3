// Package gemini generates replies through Google's Gemini REST API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"reflect"

	"github.com/invopop/jsonschema"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/orderline-ai/orderline/core/respond"
	"github.com/orderline-ai/orderline/internal/utils"
)

const (
	baseURL      = "https://generativelanguage.googleapis.com/v1beta/models"
	defaultModel = "gemini-2.5-flash"
)

type Client struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

type ClientOption func(*Client)

// WithModel overrides the generation model.
func WithModel(model string) ClientOption {
	return func(c *Client) { c.model = model }
}

func NewClient(opts ...ClientOption) (*Client, error) {
	apiKey, ok := os.LookupEnv("GOOGLE_API_KEY")
	if !ok {
		return nil, fmt.Errorf("google api key not found")
	}

	client := &Client{
		apiKey:     apiKey,
		model:      defaultModel,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

func (c *Client) Respond(ctx context.Context, prompt string, opts ...respond.Option) (*respond.Reply, error) {
	ctx, span := tracer.Start(ctx, "prompt llm")
	defer span.End()

	options := respond.Options{}
	for _, opt := range opts {
		opt(&options)
	}

	reqBody := buildRequest(prompt, options, nil)
	resp, err := c.generateContent(ctx, reqBody)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error", err.Error()))
		return nil, err
	}

	reply := &respond.Reply{}
	if len(resp.Candidates) == 0 {
		return reply, nil
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			reply.Content += part.Text
		}
		if part.FunctionCall != nil {
			reply.ToolCalls = append(reply.ToolCalls, respond.ToolCall{
				Name: part.FunctionCall.Name,
				Args: part.FunctionCall.Args,
			})
		}
	}
	span.SetAttributes(attribute.Int("response.tool_calls", len(reply.ToolCalls)))
	return reply, nil
}

func (c *Client) RespondWithStructure(ctx context.Context, prompt string, output any, opts ...respond.Option) error {
	ctx, span := tracer.Start(ctx, "prompt llm structured")
	defer span.End()

	options := respond.Options{}
	for _, opt := range opts {
		opt(&options)
	}

	reflector := jsonschema.Reflector{DoNotReference: true}
	var schema *jsonschema.Schema
	if reflect.TypeOf(output).Kind() == reflect.Ptr {
		schema = reflector.ReflectFromType(reflect.TypeOf(output).Elem())
	} else {
		schema = reflector.Reflect(output)
	}
	schemaBytes, err := schema.MarshalJSON()
	if err != nil {
		err = fmt.Errorf("error marshalling output schema: %w", err)
		span.RecordError(err)
		return err
	}
	span.SetAttributes(attribute.String("request.schema", string(schemaBytes)))

	// Structured output feeds deterministic decisions; keep sampling out
	// of it.
	reqBody := buildRequest(prompt, options, &geminiGenConfig{
		ResponseMIMEType:   "application/json",
		ResponseJSONSchema: schemaBytes,
		Temperature:        utils.Ptr(0.0),
	})

	resp, err := c.generateContent(ctx, reqBody)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error", err.Error()))
		return err
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		err := fmt.Errorf("no candidates in response")
		span.RecordError(err)
		return err
	}
	if err := json.Unmarshal([]byte(resp.Candidates[0].Content.Parts[0].Text), output); err != nil {
		err = fmt.Errorf("error unmarshalling structured response: %w", err)
		span.RecordError(err)
		return err
	}
	return nil
}

func buildRequest(prompt string, options respond.Options, genConfig *geminiGenConfig) geminiRequest {
	reqBody := geminiRequest{GenerationConfig: genConfig}

	if options.Instructions != "" {
		reqBody.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: options.Instructions}},
		}
	}

	for _, turn := range options.Turns {
		role := "user"
		if turn.Role == respond.RoleAgent {
			role = "model"
		}
		reqBody.Contents = append(reqBody.Contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: turn.Content}},
		})
	}
	reqBody.Contents = append(reqBody.Contents, geminiContent{
		Role:  "user",
		Parts: []geminiPart{{Text: prompt}},
	})

	if len(options.Tools) > 0 {
		declarations := make([]geminiFunctionDecl, 0, len(options.Tools))
		for _, tool := range options.Tools {
			declarations = append(declarations, geminiFunctionDecl{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			})
		}
		reqBody.Tools = []geminiTool{{FunctionDeclarations: declarations}}
		if options.ForcedToolCall {
			reqBody.ToolConfig = &geminiToolConfig{
				FunctionCallingConfig: &geminiFunctionCallingConfig{Mode: "ANY"},
			}
		}
	}

	return reqBody
}

func (c *Client) generateContent(ctx context.Context, reqBody geminiRequest) (*geminiResponse, error) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.String("request.model", c.model))

	requestBodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("error marshalling JSON: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent", baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("error creating HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if errorBody, err := io.ReadAll(resp.Body); err == nil {
			logger.ErrorContext(ctx, "Gemini request failed",
				"status", resp.Status, "body", string(errorBody))
		}
		return nil, fmt.Errorf("non-OK HTTP status: %s", resp.Status)
	}

	response := &geminiResponse{}
	if err := json.NewDecoder(resp.Body).Decode(response); err != nil {
		return nil, fmt.Errorf("error decoding response: %w", err)
	}
	return response, nil
}
