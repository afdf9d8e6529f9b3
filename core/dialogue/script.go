package dialogue

import "strings"

const (
	lineClarify        = "Sorry, could you repeat that?"
	lineTransferAck    = "Of course, one moment - I'll put the card holder on the line for that."
	lineVoicemailClose = "Hi, sorry to miss you - I'll try again another time. Thank you!"
	lineCloseThanks    = "Perfect, thank you so much. Bye!"
	lineSubstitution   = "That's no problem, the closest substitute you have works great."
	lineTotalAck       = "Sounds good."
)

// composeLine renders the canonical text for a protocol step from the
// order context. Ambiguous special instructions are resolved exactly once
// and stated with full confidence; the agent never asks the counterparty
// to choose on the customer's behalf.
func (e *Engine) composeLine(step Step) string {
	switch step {
	case StepGreeting:
		if e.order.IsDelivery() {
			return "Hi! I'd like to place a delivery order, please."
		}
		return "Hi! I'd like to place a pickup order, please."

	case StepItems:
		var b strings.Builder
		if !e.done[StepGreeting] {
			// Asked for the order before any greeting was exchanged: the
			// order type still has to be stated somewhere.
			e.done[StepGreeting] = true
			if e.order.IsDelivery() {
				b.WriteString("Hi! This is a delivery order. ")
			} else {
				b.WriteString("Hi! This is a pickup order. ")
			}
		}
		b.WriteString("I'd like ")
		b.WriteString(joinItems(e.order.Items))
		b.WriteString(".")
		if extra := e.resolveInstructionOnce(); extra != "" {
			b.WriteString(" Also, ")
			b.WriteString(extra)
			b.WriteString(".")
		}
		return b.String()

	case StepSize:
		if size := statedSize(e.order.Items); size != "" {
			return capitalize(size) + ", please."
		}
		return "Large, please."

	case StepSubstitution:
		return lineSubstitution

	case StepTotalAck:
		return lineTotalAck

	case StepPayment:
		method := e.order.PaymentMethod
		if method == "" {
			method = "cash"
		}
		return "We'll pay with " + method + "."

	case StepName:
		return "It's under the name " + e.order.CustomerName + "."

	case StepAddress:
		if e.order.IsDelivery() {
			return "The delivery address is " + e.order.DeliveryAddress + "."
		}
		return "It's a pickup order, we'll come to you."

	case StepClose:
		return lineCloseThanks
	}
	return lineClarify
}

func joinItems(items []string) string {
	switch len(items) {
	case 0:
		return "nothing else"
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	}
	return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
}

var knownSizes = []string{"small", "medium", "large", "extra large", "family size"}

// statedSize returns the size mentioned in the order items, if any. The
// default when the order says nothing is large.
func statedSize(items []string) string {
	for _, item := range items {
		lowered := strings.ToLower(item)
		for _, size := range knownSizes {
			if strings.Contains(lowered, size) {
				return size
			}
		}
	}
	return ""
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
