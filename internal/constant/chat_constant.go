package constant

const (
	// DefaultSessionTitle is the placeholder every new session starts with
	// until the title worker renames it.
	DefaultSessionTitle = "New chat"

	// ImageFallbackPrompt stands in for the caption when an image arrives
	// without one.
	ImageFallbackPrompt = "The user sent an image without a caption. Acknowledge it and ask what they would like to know about it."

	// TitleGenerationPrompt asks the model for a short session title based
	// on the opening question.
	TitleGenerationPrompt = `Write a short title (at most 6 words) summarizing this chat opening. Reply with the title only, no quotes, no trailing punctuation.

Opening message:
%s`

	// ChatHistoryWindow caps how many stored messages are replayed to the
	// model per request.
	ChatHistoryWindow = 30

	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)
