package widget

const (
	MsgEmptyInput      = "Please enter some text to complete."
	MsgEmptyCompletion = "The model generated an empty completion. Try adjusting the parameters."
	MsgUnknownError    = "Unknown error occurred"
	MsgUnreachable     = "Unable to connect to the server. Please check if the server is running."

	MsgNoReply = "I received your message but I don't have a response."
	MsgWelcome = "Hello! I'm your GPT-2 assistant. Feel free to ask me anything!"

	CopyLabel   = "Copy Full Text"
	CopiedLabel = "Copied!"
)
