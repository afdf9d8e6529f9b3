package gemini

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/orderline-ai/orderline/core/respond"
)

func TestBuildRequestPlacesPromptLast(t *testing.T) {
	reqBody := buildRequest("and the total?", respond.Options{
		Instructions: "be brief",
		Turns: []respond.Turn{
			{Role: respond.RoleCounterparty, Content: "what would you like"},
			{Role: respond.RoleAgent, Content: "one large pizza"},
		},
	}, nil)

	if reqBody.SystemInstruction == nil || reqBody.SystemInstruction.Parts[0].Text != "be brief" {
		t.Fatalf("system instruction = %+v", reqBody.SystemInstruction)
	}
	if len(reqBody.Contents) != 3 {
		t.Fatalf("contents length = %d, want 3", len(reqBody.Contents))
	}
	if reqBody.Contents[1].Role != "model" {
		t.Fatalf("agent turn role = %q, want model", reqBody.Contents[1].Role)
	}
	last := reqBody.Contents[2]
	if last.Role != "user" || last.Parts[0].Text != "and the total?" {
		t.Fatalf("last content = %+v", last)
	}
}

func TestBuildRequestForcedToolCall(t *testing.T) {
	reqBody := buildRequest("hand it over", respond.Options{
		Tools:          []respond.Tool{respond.TransferToCustomerTool()},
		ForcedToolCall: true,
	}, nil)

	if len(reqBody.Tools) != 1 || len(reqBody.Tools[0].FunctionDeclarations) != 1 {
		t.Fatalf("tools = %+v", reqBody.Tools)
	}
	if reqBody.ToolConfig == nil || reqBody.ToolConfig.FunctionCallingConfig.Mode != "ANY" {
		t.Fatalf("tool config = %+v", reqBody.ToolConfig)
	}
}

func TestRequestMarshalsCamelCase(t *testing.T) {
	reqBody := buildRequest("hello", respond.Options{Instructions: "hi"}, &geminiGenConfig{
		ResponseMIMEType: "application/json",
	})

	raw, err := json.Marshal(reqBody)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	for _, want := range []string{`"systemInstruction"`, `"generationConfig"`, `"responseMimeType"`} {
		if !strings.Contains(string(raw), want) {
			t.Fatalf("marshalled request missing %s: %s", want, raw)
		}
	}
}
