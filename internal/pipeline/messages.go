package pipeline

// Replies sent to the user. They are short on purpose: no error details
// ever reach the chat.
const (
	MsgListening       = "🎧 Listening..."
	MsgDownloadError   = "❌ Could not download the audio."
	MsgAIError         = "❌ AI error, please try again."
	MsgSendAudioOrText = "Send me a voice note or a text message."
	MsgStatsError      = "❌ Could not load your stats."
	MsgDataError       = "❌ Data error: I could not read the answer."
	MsgFormatError     = "❌ Unexpected format in the answer."
	MsgNoTransaction   = "🤷 No transaction found."
)

const (
	glyphSaved   = "✅"
	glyphWarning = "⚠️"
)

const statsCommand = "/stats"
