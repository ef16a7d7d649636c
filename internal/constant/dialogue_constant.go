package constant

// Termination token for the mixture builder, recognized only while the
// dialogue waits for the next item.
const MixtureStopToken = "*"

// User-facing replies. Kept in one place so the dialogue engine emits
// structured plain text and the transport handles presentation.
const (
	MsgGreeting = "Hi! Ask me anything about essential oils, or use the lookup and mixture commands to get started."

	MsgLookupPrompt  = "Enter the oil name:"
	MsgMixturePrompt = "Enter the oil name ('*' to finish):"

	MsgMixtureDiscarded = "Your previous mixture was discarded. Starting a new one."
	MsgCancelled        = "Command cancelled. Start again whenever you like."

	MsgItemNotFound    = "That item is not in the catalog. Try another name."
	MsgQuantityPrompt  = "How many drops?"
	MsgQuantityInvalid = "Please enter a whole non-negative number of drops."

	MsgSearchUnavailable = "Search is unavailable right now, the knowledge base is not loaded."
	MsgGenericFailure    = "Something went wrong while preparing your answer. Please try again."
	MsgVoiceFailure      = "Sorry, I could not understand the audio."
)
