package dialogue

import (
	"regexp"
	"strings"
)

// intent is what the counterparty's last utterance semantically requested.
type intent int

const (
	intentNone intent = iota
	intentGreeting
	intentAskOrder
	intentAskSize
	intentUnavailable
	intentTotal
	intentAskPayment
	intentAskName
	intentAskAddress
	intentETA
	intentSensitive
	intentUnclear
)

// Sensitive payment-data requests trigger the transfer branch. Matching
// is deliberately broad: a missed trigger would make the agent discuss
// card details, a false trigger only hands the call over early.
var sensitivePattern = regexp.MustCompile(
	`(?i)card\s*number|credit\s*card|debit\s*card|cvv|cvc|security\s*code|expir\w*|card\s*details|card\s*on\s*file`)

var totalPattern = regexp.MustCompile(`(?i)total|comes? (?:out )?to|that(?:'|\s+wi)ll be \$?\d|\$\d`)

var etaPattern = regexp.MustCompile(
	`(?i)\d+\s*(?:minutes|mins)|ready in|be ready|about an hour|half an hour|pick (?:it|that) up in`)

func matchIntent(transcript string) intent {
	text := strings.ToLower(strings.TrimSpace(transcript))
	if text == "" {
		return intentUnclear
	}

	switch {
	case sensitivePattern.MatchString(text):
		return intentSensitive

	case strings.Contains(text, "what would you like"),
		strings.Contains(text, "what can i get"),
		strings.Contains(text, "what can i do for you"),
		strings.Contains(text, "take your order"),
		strings.Contains(text, "go ahead with your order"),
		strings.Contains(text, "ready to order"):
		return intentAskOrder

	case strings.Contains(text, "what size"),
		strings.Contains(text, "which size"),
		strings.Contains(text, "small, medium, or large"),
		strings.Contains(text, "small or large"):
		return intentAskSize

	case strings.Contains(text, "we're out of"),
		strings.Contains(text, "we are out of"),
		strings.Contains(text, "don't have"),
		strings.Contains(text, "do not have"),
		strings.Contains(text, "no longer have"),
		strings.Contains(text, "substitut"):
		return intentUnavailable

	case totalPattern.MatchString(text):
		return intentTotal

	case strings.Contains(text, "cash or card"),
		strings.Contains(text, "how are you paying"),
		strings.Contains(text, "how will you be paying"),
		strings.Contains(text, "payment"),
		strings.Contains(text, "paying"):
		return intentAskPayment

	case strings.Contains(text, "name for the order"),
		strings.Contains(text, "your name"),
		strings.Contains(text, "name, please"),
		strings.Contains(text, "whose name"):
		return intentAskName

	case strings.Contains(text, "address"),
		strings.Contains(text, "deliver to"),
		strings.Contains(text, "delivering to"),
		strings.Contains(text, "where are you"):
		return intentAskAddress

	case etaPattern.MatchString(text):
		return intentETA

	case strings.Contains(text, "thank you for calling"),
		strings.Contains(text, "thanks for calling"),
		strings.Contains(text, "how can i help"),
		strings.Contains(text, "how may i help"):
		return intentGreeting
	}

	if isUnintelligible(text) {
		return intentUnclear
	}
	return intentNone
}

// intentFromLabel maps a classifier label back onto an intent. Unknown
// labels fall back to intentNone so a misbehaving model never blocks the
// protocol.
func intentFromLabel(label string) intent {
	switch label {
	case "greeting":
		return intentGreeting
	case "items":
		return intentAskOrder
	case "size":
		return intentAskSize
	case "unavailable":
		return intentUnavailable
	case "total":
		return intentTotal
	case "payment":
		return intentAskPayment
	case "name":
		return intentAskName
	case "address":
		return intentAskAddress
	case "eta":
		return intentETA
	case "sensitive":
		return intentSensitive
	case "unclear":
		return intentUnclear
	}
	return intentNone
}

// isUnintelligible flags speech too short or too garbled to carry a
// request worth guessing at.
func isUnintelligible(lowered string) bool {
	words := strings.Fields(lowered)
	if len(words) > 2 {
		return false
	}
	letters := 0
	for _, r := range lowered {
		if r >= 'a' && r <= 'z' {
			letters++
		}
	}
	return letters < 4
}
