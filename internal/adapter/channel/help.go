package channel

const (
	helpDiscord = `**Oura Health Assistant**

**Commands:**
` + "`/help`" + ` - Show this help
` + "`/privacy`" + ` - Data usage and privacy policy

**What I can do:**
🌙 **Sleep** - "How did I sleep?", sleep stages, trends, bedtime advice
🏃 **Fitness** - Steps, readiness, workouts, recovery status
🎯 **Goals** - "Set a goal for 8 hours of sleep", track progress
🔍 **Data** - "Is my ring syncing?", data freshness checks

**How to Use:**
• Mention me or DM directly
• Ask naturally - "Am I ready to work out today?"
• I mark handled messages with 🩺

**Note:**
I analyze wellness data from your Oura ring. I am not a medical
device and never give medical advice.`

	helpSlack = `*Oura Health Assistant*

*Commands:*
` + "`/help`" + ` - Show this help
` + "`/privacy`" + ` - Privacy policy

*What I can do:*
• Sleep analysis - quality, stages, trends, bedtime advice
• Fitness coaching - steps, readiness, workouts, recovery
• Health goals - set, track, and celebrate progress
• Data quality - sync status and freshness checks

*How to Use:*
• Slack DM: chat normally
• Channels: Mention me
• Ask naturally - no special syntax

*Note:*
Wellness insights only; never medical advice.`

	privacyText = `🔒 Privacy & Data Usage

**What I Collect:**
• Your messages in threads I participate in
• Health metrics synced from your Oura ring
• Goals and insights you ask me to keep

**How Data Is Stored:**
• All data stored locally on this machine
• No data sent to third parties except the LLM provider
• The LLM provider processes messages per its privacy policy

**Your Control:**
• Conversation threads expire automatically when idle
• Goals can be abandoned or replaced at any time
• All data is yours - you can delete it anytime

**Boundaries:**
• Wellness insights only, never diagnoses
• Your identity comes from the channel, never from message content`
)

// GetHelpText returns the appropriate help text for a channel.
func GetHelpText(channelType string) string {
	switch channelType {
	case "slack":
		return helpSlack
	default:
		return helpDiscord
	}
}

// GetPrivacyText returns the privacy information text.
func GetPrivacyText() string {
	return privacyText
}
