package moderation

import (
	"strings"

	"github.com/gbg-hll/watchdog/pkg/utils"
)

// contactIndicators mark a line the contact link should be appended to.
var contactIndicators = []string{"melde dich", "contact"}

// subjectPrefix is the heading marker dropped from AI-drafted messages.
const subjectPrefix = "betreff:"

// MessageNormalizer post-processes AI-drafted player-facing text: subject
// lines are dropped, the contact link is stripped everywhere and re-inserted
// exactly once. The transform is idempotent.
type MessageNormalizer struct {
	contactLink string
	text        *utils.TextNormalizer
}

// NewMessageNormalizer creates a normalizer for the given contact link.
func NewMessageNormalizer(contactLink string) *MessageNormalizer {
	return &MessageNormalizer{
		contactLink: contactLink,
		text:        utils.NewTextNormalizer(),
	}
}

// Normalize applies the line transform. Empty input is returned unchanged.
func (n *MessageNormalizer) Normalize(text string) string {
	if text == "" {
		return text
	}

	var cleaned []string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || n.text.HasPrefix(line, subjectPrefix) {
			continue
		}

		// The link is re-inserted exactly once below; lines reduced to
		// nothing by the strip are dropped to keep the transform idempotent.
		line = strings.TrimSpace(strings.ReplaceAll(line, n.contactLink, ""))
		if line == "" {
			continue
		}

		cleaned = append(cleaned, line)
	}

	appended := false

	for i, line := range cleaned {
		if n.containsIndicator(line) {
			cleaned[i] = n.appendLink(line)
			appended = true

			break
		}
	}

	if !appended && len(cleaned) > 0 {
		cleaned[len(cleaned)-1] = n.appendLink(cleaned[len(cleaned)-1])
	}

	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}

func (n *MessageNormalizer) containsIndicator(line string) bool {
	for _, indicator := range contactIndicators {
		if n.text.Contains(line, indicator) {
			return true
		}
	}

	return false
}

func (n *MessageNormalizer) appendLink(line string) string {
	line = strings.TrimRight(line, " \t")
	if strings.Contains(line, n.contactLink) {
		return line
	}

	return strings.TrimSpace(line + " " + n.contactLink)
}
