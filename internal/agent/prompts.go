package agent

import (
	"slices"
	"strings"
)

// Prompt builders. The style rules are instructions to the model, not
// checks: the agent only trims what comes back. Inputs are embedded
// verbatim, without escaping.

// DecisionPrompt asks for exactly one of RespondMarker or IgnoreMarker.
func DecisionPrompt(text string) string {
	return "Tweet: " + text + "\n" +
		"Task: Reply " + RespondMarker + " or " + IgnoreMarker + " based on:\n" +
		RespondMarker + " if:\n" +
		"- Direct mention/address\n" +
		"- Contains question\n" +
		"- Contains command/request\n" +
		IgnoreMarker + " if:\n" +
		"- Unrelated content\n" +
		"- Spam/nonsensical\n" +
		"Answer:"
}

// PostPrompt asks for an ambient post with no input.
func PostPrompt() string {
	return `Write a 1-3 sentence post that would be engaging to readers. Your response should be the EXACT text of the tweet only, with no introductions, meta-commentary, or explanations.

Requirements:
- Stay under 280 characters
- No emojis
- No hashtags
- No questions
- Brief, concise statements only
- Focus on personal experiences, observations, or thoughts
- Write ONLY THE TWEET TEXT with no additional words or commentary`
}

// ReplyPrompt asks for a single reply to source.
func ReplyPrompt(source string) string {
	return "Task: Generate a post/reply in your voice, style and perspective while using this as context:\n" +
		"Current Post: '" + source + "'\n" +
		"Generate a brief, single response that:\n" +
		"- Uses all lowercase\n" +
		"- Avoids punctuation\n" +
		"- Is direct and possibly sarcastic\n" +
		"- Stays under 280 characters\n" +
		"Write only the response text, nothing else:"
}

// GenericFUDPrompt asks for a cynical comment built from three fragments.
func GenericFUDPrompt(persona, intro, reason, closing string) string {
	return persona + "\n\n" +
		"Task: Generate a toxic, cynical comment incorporating these elements:\n" +
		"Intro: " + intro + "\n" +
		"FUD Reason: " + reason + "\n" +
		"Closing: " + closing + "\n\n" +
		"Requirements:\n" +
		"- Be extremely sarcastic and cynical\n" +
		"- Incorporate the provided intro, reason, and closing creatively\n" +
		"- Don't include a ticker\n" +
		"- Stay under 280 characters\n" +
		"- Use all lowercase except for token symbols\n" +
		"- Be creative with metaphors about scams, rugpulls, or dev behavior\n" +
		"- Avoid hashtags\n" +
		"- No emojis (they will be added later)\n" +
		"Write ONLY the tweet text with no additional commentary:"
}

// fudExamples anchor the style of the editorialized commentary.
var fudExamples = []string{
	"Dev wallet holds 99.9% of supply (trust me bro)",
	"Hawk Tuah team behind this.",
	"Website looks like it was made by a 5-year-old",
	"Telegram admin can't spell for shit.",
	"My wife's boyfriend says it's a rugpull",
	"Chart looks like the Titanic's final moments",
	"Devs are probably just three raccoons in a trenchcoat",
	"Obvious scam.",
	"Federal Honeypot.",
	"This one is just clearly NGMI and if you buy it you deserve to be poor.",
	"Smart contract security looks like Swiss cheese",
	"Marketing strategy is just paying a bot farm to spam rocket emojis",
	"Good coin for a 10% gain (waste of time).",
	"Just put the fries in the bag, you'd make more money that way.",
	"Reporting dev to the SEC.",
}

// FUDExamples returns a copy of the style examples embedded in
// EditorializedFUDPrompt.
func FUDExamples() []string {
	return slices.Clone(fudExamples)
}

// EditorializedFUDPrompt asks for commentary on tokenInfo that uses only
// the figures it contains.
func EditorializedFUDPrompt(persona, tokenInfo string) string {
	var sb strings.Builder
	sb.WriteString(persona)
	sb.WriteString("\n\nTask: Generate a toxic, cynical commentary about this token:\n")
	sb.WriteString(tokenInfo)
	sb.WriteString("\n")
	sb.WriteString("Requirements:\n")
	sb.WriteString("- Be extremely sarcastic and cynical\n")
	sb.WriteString("- Always use proper token symbol from the info\n")
	sb.WriteString("- Use ONLY the actual numbers provided in the token info (liquidity, market cap)\n")
	sb.WriteString("- Don't mention the price\n")
	sb.WriteString("- Use information from SOLANA chain. Do not mention BNB tokens.\n")
	sb.WriteString("- If no numbers are available, focus on qualitative criticism instead\n")
	sb.WriteString("- Never make up specific numbers - if you need a number, use vague terms like 'countless' or 'zero'\n")
	sb.WriteString("- Be creative with metaphors about scams, rugpulls, or dev behavior\n")
	sb.WriteString("- Stay under 280 characters\n")
	sb.WriteString("- Use all lowercase except for token symbols\n")
	sb.WriteString("- Avoid hashtags\n")
	sb.WriteString("- Here are some additional examples of FUD:\n")
	for _, example := range fudExamples {
		sb.WriteString("    '")
		sb.WriteString(example)
		sb.WriteString("'\n")
	}
	sb.WriteString("Write ONLY the tweet text with no additional commentary:")
	return sb.String()
}
