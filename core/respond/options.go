// Package respond defines the contract for language-model text
// generation used on a live order call, along with the prompts and tool
// declarations the call agent works with.
package respond

import (
	"context"
	"encoding/json"
)

type Role string

const (
	RoleAgent        Role = "agent"
	RoleCounterparty Role = "counterparty"
)

// Turn is one prior exchange of the call, oldest first.
type Turn struct {
	Role    Role
	Content string
}

// Tool is a function the model may request instead of answering in text.
type Tool struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// ToolCall is the model's request to invoke a declared tool.
type ToolCall struct {
	Name string
	Args map[string]any
}

// Reply is the model's answer to one prompt.
type Reply struct {
	Content   string
	ToolCalls []ToolCall
}

// Provider generates free-text replies.
type Provider interface {
	Respond(ctx context.Context, prompt string, opts ...Option) (*Reply, error)
}

// StructuredProvider generates replies constrained to the JSON schema of
// the output value.
type StructuredProvider interface {
	RespondWithStructure(ctx context.Context, prompt string, output any, opts ...Option) error
}

type Options struct {
	Instructions   string
	Turns          []Turn
	Tools          []Tool
	ForcedToolCall bool
}

type Option func(*Options)

func WithInstructions(instructions string) Option {
	return func(o *Options) { o.Instructions = instructions }
}

func WithTurns(turns ...Turn) Option {
	return func(o *Options) { o.Turns = append(o.Turns, turns...) }
}

func WithTools(tools ...Tool) Option {
	return func(o *Options) { o.Tools = append(o.Tools, tools...) }
}

func WithForcedToolCall() Option {
	return func(o *Options) { o.ForcedToolCall = true }
}
