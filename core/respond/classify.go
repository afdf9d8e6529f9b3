package respond

import (
	"context"
	"fmt"
	"slices"
)

const intentClassifierSystemPrompt = `You classify one utterance spoken by
restaurant staff during a phone order. Answer with the single best label:
- greeting: they answered the phone or asked how they can help
- items: they asked what the caller wants to order
- size: they asked for a size or variant
- unavailable: an item is out of stock or they offered a substitution
- total: they stated the price or total
- payment: they asked how the order will be paid
- name: they asked for a name for the order
- address: they asked where to deliver
- eta: they gave a pickup or delivery time estimate
- sensitive: they asked for payment card details or similar data that
  must never be answered by an assistant
- unclear: the utterance is too garbled or fragmentary to classify
- none: intelligible speech that requests nothing in particular

Escalations available to the caller:
`

// Classification is the structured label for one staff utterance.
type Classification struct {
	Intent string `json:"intent" jsonschema:"title=Intent,description=The label of the utterance,enum=greeting,enum=items,enum=size,enum=unavailable,enum=total,enum=payment,enum=name,enum=address,enum=eta,enum=sensitive,enum=unclear,enum=none"`
}

// IntentClassifier labels staff utterances that keyword matching could
// not place, using a structured model reply.
type IntentClassifier struct {
	llm   StructuredProvider
	tools []Tool
}

type IntentClassifierOption func(*IntentClassifier)

// WithEscalationTools overrides the escalations listed in the classifier
// instructions. The default is the transfer-to-customer hand-off.
func WithEscalationTools(tools ...Tool) IntentClassifierOption {
	return func(c *IntentClassifier) { c.tools = slices.Clone(tools) }
}

func NewIntentClassifier(llm StructuredProvider, opts ...IntentClassifierOption) *IntentClassifier {
	classifier := &IntentClassifier{
		llm:   llm,
		tools: []Tool{TransferToCustomerTool()},
	}
	for _, opt := range opts {
		opt(classifier)
	}
	return classifier
}

func (c *IntentClassifier) ClassifyIntent(ctx context.Context, transcript string) (string, error) {
	systemPrompt := intentClassifierSystemPrompt
	for _, tool := range c.tools {
		systemPrompt += fmt.Sprintf("- %s: %s\n", tool.Name, tool.Description)
	}

	resp := Classification{}
	if err := c.llm.RespondWithStructure(ctx, transcript, &resp,
		WithInstructions(systemPrompt),
	); err != nil {
		return "", fmt.Errorf("failed to classify utterance: %w", err)
	}
	return resp.Intent, nil
}
