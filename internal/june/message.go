package june

// Roles used in conversation histories.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single entry in a conversation history. Once appended to a
// context it is never mutated.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completion is the assistant reply returned to the caller.
// ContextID is set only when the engine minted a fresh context id for this
// call, so the caller can resume the conversation.
type Completion struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	ContextID string `json:"context_id,omitempty"`
}
