package script

import (
	"fmt"

	"github.com/MikeSquared-Agency/hive/internal/prospect"
)

const maxScriptTokens = 400

var typeInstructions = map[Type]string{
	TypeApproach:  "Write a first-contact message. Open by referencing what they said or did, then offer one concrete next step.",
	TypeFollowUp:  "Write a short follow-up to a message they have not answered yet. Add one new piece of value; do not guilt them.",
	TypeObjection: "Write a reply to a likely objection given their signal. Acknowledge it plainly, then reframe with one specific benefit.",
}

const promptTemplate = `You write short, friendly outreach messages for a sales and recruiting team.

Prospect:
- Name: %s
- Found via: %s
- Why they were flagged: %s
- Lead score: %d/100

%s

Rules:
- Under 80 words, plain text, no subject line, no placeholders like [Name].
- Match the tone of the channel they were found on.
- Return only the message text.`

// BuildPrompt renders the generation prompt for a prospect and script type.
func BuildPrompt(p prospect.Prospect, t Type) string {
	instr, ok := typeInstructions[t]
	if !ok {
		instr = typeInstructions[TypeApproach]
	}
	return fmt.Sprintf(promptTemplate, p.Name, p.Source, p.Signal, p.Score, instr)
}
