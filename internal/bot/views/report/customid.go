package report

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gbg-hll/watchdog/internal/bot/constants"
	"github.com/gbg-hll/watchdog/internal/moderation"
)

var errMalformedCustomID = errors.New("malformed custom id")

// Custom IDs for ephemeral follow-up views embed the card message ID and the
// pending action so handlers stay stateless between clicks.

func actionButtonID(action moderation.Action) string {
	return fmt.Sprintf("%s:%s", constants.ActionButtonPrefix, action)
}

func reasonSelectID(cardID uint64, action moderation.Action) string {
	return fmt.Sprintf("%s:%d:%s", constants.ReasonSelectPrefix, cardID, action)
}

func reasonModalID(cardID uint64, action moderation.Action) string {
	return fmt.Sprintf("%s:%d:%s", constants.ReasonModalPrefix, cardID, action)
}

func confirmButtonID(cardID uint64) string {
	return fmt.Sprintf("%s:%d", constants.ConfirmButtonPrefix, cardID)
}

// parseActionButton extracts the action from a card action button ID.
func parseActionButton(customID string) (moderation.Action, error) {
	value, ok := strings.CutPrefix(customID, constants.ActionButtonPrefix+":")
	if !ok {
		return "", fmt.Errorf("%w: %s", errMalformedCustomID, customID)
	}

	action, ok := moderation.ParseAction(value)
	if !ok {
		return "", fmt.Errorf("%w: unknown action in %s", errMalformedCustomID, customID)
	}

	return action, nil
}

// parseCardAction extracts the card message ID and action from a reason
// select or reason modal ID.
func parseCardAction(customID, prefix string) (uint64, moderation.Action, error) {
	value, ok := strings.CutPrefix(customID, prefix+":")
	if !ok {
		return 0, "", fmt.Errorf("%w: %s", errMalformedCustomID, customID)
	}

	idPart, actionPart, ok := strings.Cut(value, ":")
	if !ok {
		return 0, "", fmt.Errorf("%w: %s", errMalformedCustomID, customID)
	}

	cardID, err := strconv.ParseUint(idPart, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("%w: %s", errMalformedCustomID, customID)
	}

	action, ok := moderation.ParseAction(actionPart)
	if !ok {
		return 0, "", fmt.Errorf("%w: unknown action in %s", errMalformedCustomID, customID)
	}

	return cardID, action, nil
}

// parseConfirmButton extracts the card message ID from a confirm button ID.
func parseConfirmButton(customID string) (uint64, error) {
	value, ok := strings.CutPrefix(customID, constants.ConfirmButtonPrefix+":")
	if !ok {
		return 0, fmt.Errorf("%w: %s", errMalformedCustomID, customID)
	}

	cardID, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", errMalformedCustomID, customID)
	}

	return cardID, nil
}
