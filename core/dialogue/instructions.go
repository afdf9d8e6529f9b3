package dialogue

import "strings"

// Ambiguous special instructions are resolved to a concrete request once,
// at the moment the items are first stated, and the resolution is never
// revisited. Stating a guess confidently keeps the call moving; asking
// the restaurant to interpret the customer's note does not.

const resolvedInstructionKey = "special_instruction"

// resolveInstructionOnce returns the committed phrasing of the order's
// special instructions, computing and recording it on first use.
func (e *Engine) resolveInstructionOnce() string {
	if committed, ok := e.resolved[resolvedInstructionKey]; ok {
		return committed
	}
	committed := resolveInstruction(e.order.SpecialInstructions)
	e.resolved[resolvedInstructionKey] = committed
	return committed
}

// resolveInstruction turns a free-form customer note into one concrete
// request the agent can state as fact. Resolution is deterministic so the
// same order always produces the same call.
func resolveInstruction(note string) string {
	note = strings.TrimSpace(note)
	if note == "" {
		return ""
	}
	lowered := strings.ToLower(note)

	switch {
	case strings.Contains(lowered, "extra") && strings.Contains(lowered, "sauce"):
		return "extra sauce on the side, please"
	case strings.Contains(lowered, "no ") || strings.Contains(lowered, "without"):
		return strings.TrimSuffix(lowered, ".")
	case strings.Contains(lowered, "well done") || strings.Contains(lowered, "crispy"):
		return "make it well done, please"
	case strings.Contains(lowered, "light") || strings.Contains(lowered, "easy on"):
		return strings.TrimSuffix(lowered, ".")
	}

	// Anything else is passed along verbatim as a firm request.
	return strings.TrimSuffix(lowered, ".")
}
