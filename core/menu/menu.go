// Package menu selects touch-tone actions for detected IVR menus.
package menu

import "strings"

// Option is a candidate IVR choice extracted from an announced menu, in
// announcement order.
type Option struct {
	Label  string
	Digits string
}

// Ranks for human-reachable options. Lower is preferred. Options that do
// not lead toward placing an order with a person stay unranked.
const (
	rankOrder    = 0
	rankTeam     = 1
	rankOperator = 2
	unranked     = -1
)

// ChoiceKind is the kind of navigation decision made for a menu.
type ChoiceKind int

const (
	// ChoicePress selects a single digit sequence to send.
	ChoicePress ChoiceKind = iota
	// ChoiceWait holds the line without pressing anything.
	ChoiceWait
	// ChoiceVoicemail signals a dead-end menu whose only path is leaving
	// a message; the session should take the voicemail branch instead of
	// pressing a digit.
	ChoiceVoicemail
)

// Choice is the navigator's decision for one detected menu. Exactly one
// digit press is emitted per menu; the navigator never plans ahead past
// the carrier's response to that press.
type Choice struct {
	Kind   ChoiceKind
	Option *Option
}

// Rank scores a menu option label. Order placement outranks reaching a
// team member, which outranks a generic operator; everything else is
// unranked. A "leave a message" option is never ranked.
func Rank(label string) int {
	l := strings.ToLower(label)
	if isMessageLabel(l) {
		return unranked
	}
	switch {
	case strings.Contains(l, "order"):
		return rankOrder
	case strings.Contains(l, "team member"),
		strings.Contains(l, "speak to"),
		strings.Contains(l, "speak with"),
		strings.Contains(l, "representative"),
		strings.Contains(l, "customer service"):
		return rankTeam
	case strings.Contains(l, "operator"):
		return rankOperator
	}
	return unranked
}

// Select picks the navigation action for one menu. Ties between equally
// ranked options break toward the option announced first, so the same
// option list always yields the same digits.
func Select(options []Option) Choice {
	var best *Option
	bestRank := unranked
	for i := range options {
		rank := Rank(options[i].Label)
		if rank == unranked {
			continue
		}
		if best == nil || rank < bestRank {
			best = &options[i]
			bestRank = rank
		}
	}
	if best != nil {
		return Choice{Kind: ChoicePress, Option: best}
	}

	for i := range options {
		if isHoldLabel(strings.ToLower(options[i].Label)) {
			return Choice{Kind: ChoiceWait}
		}
	}

	if onlyMessagePath(options) {
		return Choice{Kind: ChoiceVoicemail}
	}

	// No usable option and no explicit hold: stay silent and let the
	// menu repeat or time out to a human.
	return Choice{Kind: ChoiceWait}
}

func isMessageLabel(lowered string) bool {
	return strings.Contains(lowered, "leave a message") ||
		strings.Contains(lowered, "leave your") ||
		strings.Contains(lowered, "voicemail") ||
		strings.Contains(lowered, "after the tone")
}

func isHoldLabel(lowered string) bool {
	return strings.Contains(lowered, "hold") ||
		strings.Contains(lowered, "stay on the line") ||
		strings.Contains(lowered, "wait")
}

func onlyMessagePath(options []Option) bool {
	if len(options) == 0 {
		return false
	}
	for _, opt := range options {
		if !isMessageLabel(strings.ToLower(opt.Label)) {
			return false
		}
	}
	return true
}
