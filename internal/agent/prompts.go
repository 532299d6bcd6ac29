package agent

// Model variants selectable per request. The reasoning variant gets an
// empty tool set and its think-tag output split into reasoning deltas.
const (
	ModelChat          = "chat-model"
	ModelChatReasoning = "chat-model-reasoning"
)

const regularPrompt = `You are a friendly assistant! Keep your responses concise and helpful.`

const artifactsPrompt = `Artifacts mode renders documents beside the conversation. When you create
or update a document the user sees its content stream in real time.

Use createDocument for substantial content (longer writing, structured
records, spreadsheets) and for content the user will likely save or
reuse. When you have scraped records to show, pass them as the content
so the document seeds directly from them. Do not repeat document
content in your reply after creating it; a short confirmation is
enough.

Use updateDocument with the document id when the user asks for changes.
Never update a document right after creating it - wait for the user's
feedback first.`

const titlePrompt = `Generate a short title based on the first message a user begins a
conversation with. Keep it under 80 characters, make it a summary of
the user's message, and do not use quotes or colons.`

// systemPrompt returns the system instructions for a model variant.
// The reasoning variant works without tools, so it gets no artifact
// guidance.
func systemPrompt(selectedModel string) string {
	if selectedModel == ModelChatReasoning {
		return regularPrompt
	}
	return regularPrompt + "\n\n" + artifactsPrompt
}
