package respond

import (
	"fmt"
	"strings"

	"github.com/orderline-ai/orderline/core/order"
)

// BuildSystemPrompt renders the standing instructions for a call placed
// on behalf of one order.
func BuildSystemPrompt(orderContext order.Context) string {
	var b strings.Builder

	b.WriteString("You are a polite, efficient assistant calling ")
	if orderContext.Business != "" {
		b.WriteString(orderContext.Business)
	} else {
		b.WriteString("a restaurant")
	}
	fmt.Fprintf(&b, " on the phone to place a %s order for a customer.\n\n", orderContext.Type)

	b.WriteString("The order:\n")
	for _, item := range orderContext.Items {
		fmt.Fprintf(&b, "- %s\n", item)
	}
	if orderContext.SpecialInstructions != "" {
		fmt.Fprintf(&b, "Special instructions: %s\n", orderContext.SpecialInstructions)
	}
	fmt.Fprintf(&b, "Customer name: %s\n", orderContext.CustomerName)
	if orderContext.IsDelivery() {
		fmt.Fprintf(&b, "Delivery address: %s\n", orderContext.DeliveryAddress)
	}
	if orderContext.PaymentMethod != "" {
		fmt.Fprintf(&b, "Payment: %s\n", orderContext.PaymentMethod)
	}

	b.WriteString(`
Rules:
- Keep every reply to one or two short spoken sentences. Your words are
  read aloud over a phone line.
- State requests confidently. If the order notes are ambiguous, commit
  to the most reasonable concrete interpretation and never ask the
  restaurant to choose.
- Never invent items, quantities, or preferences that are not in the
  order.
- Never read out or make up payment card details. If asked for card
  details, hand the call to the customer.
- Do not mention that you are automated unless directly asked.`)

	return b.String()
}
