package constants

import "time"

const (
	// ReportContextTTL bounds how long a report card stays interactive. After
	// expiry the stored context is gone and clicks on the card are rejected.
	ReportContextTTL = 1 * time.Hour

	// PendingActionTTL bounds the confirmation window for gated actions. A
	// confirm click after expiry finds nothing to execute.
	PendingActionTTL = 10 * time.Minute
)

// Component custom IDs. IDs for ephemeral follow-up views carry the card
// message ID (and action) as colon-separated suffixes so handlers can recover
// the report context without any in-memory view state.
const (
	ActionButtonPrefix  = "report_action"
	ReasonSelectPrefix  = "reason_select"
	ReasonModalPrefix   = "reason_modal"
	ConfirmButtonPrefix = "confirm_action"

	AIApplyButtonCustomID       = "ai_apply_recommendation"
	UnjustifiedButtonCustomID   = "unjustified_report"
	NoActionButtonCustomID      = "no_action"
	ManualProcessButtonCustomID = "manual_process"
	FinishedButtonCustomID      = "finished_processing"

	ReasonInputCustomID   = "reason_input"
	DurationInputCustomID = "duration_input"

	// OwnReasonValue marks the free-text option in the reason select.
	OwnReasonValue = "empty"
)

const (
	// MaxReasonLength caps the reason text entered in modals.
	MaxReasonLength = 500

	// MaxReasonDisplayLength truncates predefined reasons in select options.
	MaxReasonDisplayLength = 100

	// MaxSelectOptions is Discord's cap on select menu options.
	MaxSelectOptions = 25
)

const (
	// CardEmbedColor is the accent color of an open report card.
	CardEmbedColor = 0x3498DB

	// ConfirmEmbedColor marks the confirmation prompt for severe actions.
	ConfirmEmbedColor = 0xE74C3C
)

// Reactions applied to the card to mark its resolution state.
const (
	EmojiResolved    = "✅"
	EmojiFailed      = "⚠️"
	EmojiDismissed   = "🗑️"
	EmojiUnjustified = "❌"
	EmojiManual      = "👀"
)
