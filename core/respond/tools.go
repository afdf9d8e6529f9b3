package respond

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// TransferToCustomerToolName is the declared name of the hand-off tool.
const TransferToCustomerToolName = "transfer_to_customer"

type transferToCustomerParams struct {
	Reason string `json:"reason" jsonschema:"title=Reason,description=Why the call needs the customer on the line"`
}

// TransferToCustomerTool declares the hand-off to the human customer.
// Once invoked the agent goes permanently silent on the call.
func TransferToCustomerTool() Tool {
	return Tool{
		Name: TransferToCustomerToolName,
		Description: "Bridge the human customer onto the call and mute the agent. " +
			"Use when the restaurant asks for payment card details or anything " +
			"else only the customer can answer.",
		Parameters: toolParameters(transferToCustomerParams{}),
	}
}

func toolParameters(v any) json.RawMessage {
	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.Reflect(v)
	raw, err := schema.MarshalJSON()
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return raw
}
