package types

// MessageRole identifies the author of a conversation message.
type MessageRole string

const (
	// RoleSystem is the framing prompt that configures the model.
	RoleSystem MessageRole = "system"

	// RoleUser is input from the caller, including tool results echoed
	// back to the model between iterations.
	RoleUser MessageRole = "user"

	// RoleAssistant is a raw model reply.
	RoleAssistant MessageRole = "assistant"
)

// MessageKind distinguishes tool-output turns from ordinary user turns.
// Tool outputs travel on the user role at the provider wire, but the
// transcript keeps them tagged so post-processing can select them.
type MessageKind string

const (
	KindPrompt     MessageKind = "prompt"
	KindToolOutput MessageKind = "tool_output"
)

// Message is one entry in a conversation transcript.
type Message struct {
	Role    MessageRole `json:"role"`
	Kind    MessageKind `json:"kind,omitempty"`
	Content string      `json:"content"`
}

// NewSystemMessage creates a system-role message.
func NewSystemMessage(content string) *Message {
	return &Message{Role: RoleSystem, Kind: KindPrompt, Content: content}
}

// NewUserMessage creates a user-role message.
func NewUserMessage(content string) *Message {
	return &Message{Role: RoleUser, Kind: KindPrompt, Content: content}
}

// NewAssistantMessage creates an assistant-role message.
func NewAssistantMessage(content string) *Message {
	return &Message{Role: RoleAssistant, Content: content}
}

// NewToolOutputMessage creates a user-role message carrying tool results.
func NewToolOutputMessage(content string) *Message {
	return &Message{Role: RoleUser, Kind: KindToolOutput, Content: content}
}

// IsToolOutput reports whether the message carries tool results.
func (m *Message) IsToolOutput() bool {
	return m.Kind == KindToolOutput
}

// ModelInfo describes the model behind an LLM provider.
type ModelInfo struct {
	Provider  string                 `json:"provider"`
	Name      string                 `json:"name"`
	MaxTokens int                    `json:"max_tokens"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}
