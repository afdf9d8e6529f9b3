package classify

import (
	"regexp"
	"strings"

	"github.com/orderline-ai/orderline/core/menu"
)

// IVR prompts announce options either as "press 1 to place an order" or
// "to place an order, press 1". Both shapes are extracted; announcement
// order is preserved so downstream tie-breaking stays deterministic.
var (
	pressThenLabel = regexp.MustCompile(`(?i)press\s+([0-9*#])\s*(?:,|\s)\s*(?:for|to|if)\s+([^,.;]+)`)
	labelThenPress = regexp.MustCompile(`(?i)(?:for|to)\s+([^,.;]+?)\s*,?\s+(?:please\s+)?press\s+([0-9*#])`)
)

var voicemailPhrases = []string{
	"leave a message",
	"leave your name and number",
	"leave your name",
	"after the tone",
	"after the beep",
	"at the tone",
	"record your message",
	"is not available",
	"are not available",
	"unable to take your call",
	"has a voicemail",
	"voicemail box",
}

type extractedOption struct {
	index  int
	option menu.Option
}

// ExtractMenuOptions parses menu options out of a final transcript. The
// result is empty when the text does not look like a touch-tone menu.
func ExtractMenuOptions(transcript string) []menu.Option {
	if !strings.Contains(strings.ToLower(transcript), "press") {
		return nil
	}

	// Menus announce all options in one shape; mixing both patterns over
	// the same text produces phantom cross-phrase matches, so the
	// press-first shape wins outright when it matches at all.
	var found []extractedOption
	for _, match := range pressThenLabel.FindAllStringSubmatchIndex(transcript, -1) {
		digits := transcript[match[2]:match[3]]
		label := strings.TrimSpace(transcript[match[4]:match[5]])
		found = append(found, extractedOption{
			index:  match[0],
			option: menu.Option{Label: label, Digits: digits},
		})
	}
	if len(found) == 0 {
		for _, match := range labelThenPress.FindAllStringSubmatchIndex(transcript, -1) {
			label := strings.TrimSpace(transcript[match[2]:match[3]])
			digits := transcript[match[4]:match[5]]
			found = append(found, extractedOption{
				index:  match[0],
				option: menu.Option{Label: label, Digits: digits},
			})
		}
	}
	if len(found) == 0 {
		return nil
	}

	// Announcement order, with duplicate digit announcements collapsed
	// to their first mention.
	sortByIndex(found)
	seen := make(map[string]bool, len(found))
	options := make([]menu.Option, 0, len(found))
	for _, f := range found {
		if seen[f.option.Digits] {
			continue
		}
		seen[f.option.Digits] = true
		options = append(options, f.option)
	}
	return options
}

func sortByIndex(found []extractedOption) {
	// Insertion sort; menus announce a handful of options at most.
	for i := 1; i < len(found); i++ {
		for j := i; j > 0 && found[j].index < found[j-1].index; j-- {
			found[j], found[j-1] = found[j-1], found[j]
		}
	}
}

// IsVoicemailGreeting reports whether a final transcript reads like a
// voicemail greeting rather than live speech.
func IsVoicemailGreeting(transcript string) bool {
	lowered := strings.ToLower(transcript)
	for _, phrase := range voicemailPhrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}
