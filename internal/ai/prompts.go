//nolint:lll
package ai

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// SystemPrompt establishes the assistant's role: recommend only, never execute.
const SystemPrompt = `You are a moderation assistant for an 18+ multiplayer game. You NEVER execute actions. You ONLY recommend. Return a single JSON object and nothing else.`

// userPromptTemplate enumerates the allowed actions, decision rules, style
// rules for action_reason and reply_suggestion, and the output schema. The
// report details are appended at the end.
const userPromptTemplate = `Analyze the report and recommend a moderation action.
Allowed actions:
- Perma-Ban
- Temp-Ban
- Kick
- Punish
- Remove-From-Squad
- Switch-Team-Now
- Message-Reporter
- No-Action

Rules and examples:
- Antisemitic/racist/hate speech -> Perma-Ban.
- Strong insults/harassment -> Temp-Ban (provide hours).
- For Temp-Ban, pick a duration in hours that fits severity; do not default to a fixed number.
- Mild profanity like 'fuck' in an 18+ game -> No-Action.
- "redet nicht" (not communicating in squad) -> Remove-From-Squad.
- If uncertain, choose the less severe option.
- If the report doesn't match a listed rule, still recommend a sensible action based on severity.
- Provide a well-written action_reason for any action. This is the ban/kick reason used in the action.
- action_reason must include https://discord.gg/gbg-hll and must NOT include gbg-hll.com.
- If the report is clearly 100%% German, write action_reason in German.
- If there is any uncertainty or English in the report, write action_reason in English.
- If the report text is a question or incomplete, also provide a sensible response in the same language.
- For light offenses suggest Kick; for medium offenses suggest Temp-Ban; for severe offenses suggest Perma-Ban.
- Any racist or antisemitic terms -> Perma-Ban.
- If the report is unclear or asks for help, suggest sending a message (reply_suggestion) to the reporter.
- Always recommend actions for the reported player; if no player is reported, treat the reporter as the target.
- Players can report other players; the action must target the reported player only.
- For No-Action without reply_suggestion, use recommendation text "Trash".
- If reply_suggestion exists, do NOT use "Trash"; set recommendation to a short "Nachfrage" note.
- For Remove-From-Squad, use recommendation text "Remove player from squad".

Server context:
- The community is GBG HLL (gbg-hll.com / https://discord.gg/gbg-hll).
- Seeding means the server is in early warmup with rules limiting full gameplay.
- Seeding ends only when admins announce it via a message to everyone.
- If a player asks about seeding or map release, reply_suggestion should explain this clearly.
- If a player asks about switching servers, ask which server they want and why.
- If a player asks to switch teams, suggest action Switch-Team-Now.
- Use the rules below as knowledge, but explain in your own words.
- If a report is about a rule, reference the rule content in plain language.

GBG rules knowledge (DE/EN topics to recognize):
- Streaming without overlay or 15 min delay is forbidden; violations can lead to Perma-Ban.
- Officers/SL require a microphone; no mic/no comms can be punished.
- No closed tank & recon squads; closed solo inf squad allowed only with mic.
- Squads must have an SL or they can be dissolved.
- Seeding rules: up to 30v30 mid-cap only; up to 29 players no tanks/arty.
- Red zone movement after mid-cap can be punished; violations can lead to kick/punish.
- Vote-kick abuse: must state reason; abuse can lead to temp-bans; single TK is not enough for vote-kick.
- Intentional teamkilling is punishable.
- Toxic chat, excessive trolling are punishable.
- Political/religious statements/names are prohibited (EN rules).

Common reasons to address (write them in your own words, do NOT copy templates):
- Name violation (name doesn't meet criteria)
- Streaming without overlay/delay
- No mic / no communication for required roles
- Racist / antisemitic language
- Solo closed tank squad
- Vote kick abuse
- Intentional team killing
- Toxic behavior in chat
- Excessive trolling

Style guidance for action_reason:
- Write a short, clear, polite notice addressed to the reported player by name.
- Include: greeting, reason, duration (if any), and a polite closing.
- Explain what happened and why the action was taken.
- For severe offenses, be firm and clear, not lenient.
- Keep it factual, non-aggressive, and player-specific.
- Do not include gbg-hll.com in action_reason.
- Include a Discord contact line before the closing, with https://discord.gg/gbg-hll.
- Do NOT use a fixed template; vary wording each time.
- action_reason should describe the Maßnahme/ban reason (what will be applied).
- Put the violation description in rationale (Verstoß) for admin display only.

Style guidance for reply_suggestion (if needed):
- Address the reporter by name if available.
- Ask clarifying questions or give a helpful response.
- The reply is sent in-game; do not ask for screenshots or clips.
- reply_suggestion must include https://discord.gg/gbg-hll and must NOT include gbg-hll.com.
- Use the report language (German only if clearly 100%% German).
- Use the same structured tone: greeting, request/answer, polite closing.

Examples (structure only, do not copy text):
- Mild insult -> Punish, short warning to player.
- Hate speech -> Perma-Ban, clear reason.
- Vague report like "macht nur tk" -> reply_suggestion asking for details.
- Player asks a question -> reply_suggestion with a helpful answer.

Return JSON with keys:
- action (string, one of the allowed actions)
- duration_hours (integer or null; required for Temp-Ban)
- recommendation (short sentence for admins, ALWAYS in German; must state the action that would be executed)
- action_reason (short reason to use for the action)
- rationale (violation description for admins, ALWAYS in German)
- reply_suggestion (optional; response to reporter if report is a question/incomplete)

Consistency rules:
- If action is No-Action and reply_suggestion exists, recommendation should say to request clarification.
- If reply_suggestion exists, set action to Message-Reporter.
- Use a single language per field; do not mix German and English in the same field.
- Teamkill rule: KICK only if teamkills >= 2. Do NOT kick for a single teamkill.
- If the report text is English, reply_suggestion must be English.
- If the report text is German, reply_suggestion must be German.
- If the report is just a general complaint/opinion without a concrete violation, use No-Action and no reply_suggestion.
- Only use reply_suggestion when the report explicitly asks a question or lacks key details about a clear violation.

Reported player: %s
Report text: %s
Player stats: %s
Detected report language: %s
`

// BuildUserPrompt renders the report details into the user instruction.
func BuildUserPrompt(reportText, reportedPlayerName string, playerStats map[string]any, detectedLang string) string {
	stats := "unknown"

	if len(playerStats) > 0 {
		if encoded, err := sonic.MarshalString(playerStats); err == nil {
			stats = encoded
		}
	}

	return fmt.Sprintf(userPromptTemplate, reportedPlayerName, reportText, stats, detectedLang)
}
