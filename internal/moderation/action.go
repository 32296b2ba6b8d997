package moderation

// Action identifies one of the closed set of moderation actions.
type Action string

const (
	ActionMessage           Action = "Message"
	ActionMessageReporter   Action = "Message-Reporter"
	ActionPunish            Action = "Punish"
	ActionKick              Action = "Kick"
	ActionTempBan           Action = "Temp-Ban"
	ActionPermaBan          Action = "Perma-Ban"
	ActionRemoveFromSquad   Action = "Remove-From-Squad"
	ActionSwitchTeamNow     Action = "Switch-Team-Now"
	ActionSwitchTeamOnDeath Action = "Switch-Team-On-Death"
	ActionWatchPlayer       Action = "Watch-Player"
	ActionUnwatchPlayer     Action = "Unwatch-Player"
	ActionAddComment        Action = "Add-Comment"
	ActionNone              Action = "No-Action"
)

// Actions lists every valid action.
var Actions = []Action{
	ActionMessage,
	ActionMessageReporter,
	ActionPunish,
	ActionKick,
	ActionTempBan,
	ActionPermaBan,
	ActionRemoveFromSquad,
	ActionSwitchTeamNow,
	ActionSwitchTeamOnDeath,
	ActionWatchPlayer,
	ActionUnwatchPlayer,
	ActionAddComment,
	ActionNone,
}

// ParseAction maps a string onto a known action.
func ParseAction(s string) (Action, bool) {
	for _, action := range Actions {
		if string(action) == s {
			return action, true
		}
	}

	return "", false
}

// NeedsConfirmation reports whether the action requires an explicit confirm
// click before execution: always for a perma-ban, and for temp-bans whose
// duration exceeds the warning threshold.
func (a Action) NeedsConfirmation(durationHours, warningThresholdHours int) bool {
	switch a {
	case ActionPermaBan:
		return true
	case ActionTempBan:
		return durationHours > warningThresholdHours
	default:
		return false
	}
}

// NeedsReason reports whether the action takes a free-text reason or message.
func (a Action) NeedsReason() bool {
	switch a {
	case ActionSwitchTeamNow, ActionSwitchTeamOnDeath, ActionUnwatchPlayer, ActionNone:
		return false
	default:
		return true
	}
}

// ActionRequest is a single-use execution request built by the orchestrator
// from either manual reason selection or an accepted AI decision.
type ActionRequest struct {
	Action         Action
	Reason         string
	PlayerName     string
	PlayerID       string
	AuthorName     string
	AuthorPlayerID string // empty when the reporter is not on the server
	ModeratorName  string
	SelfReport     bool
	DurationHours  int // only meaningful for Temp-Ban
}

// ActionResult reports the outcome of one executed action. Modlog is empty on
// failure. Results are terminal and never retried automatically.
type ActionResult struct {
	Success bool
	Message string
	Modlog  string
}
