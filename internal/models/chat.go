package models

// Role identifies who authored a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn represents a single message in the conversation.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

func UserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content}
}

func AssistantTurn(content string) Turn {
	return Turn{Role: RoleAssistant, Content: content}
}

// ChatRequest is the payload sent to the chat endpoint.
type ChatRequest struct {
	UserMessage string `json:"userMessage" validate:"required"`
}

// ChatResponse carries the full conversation after an exchange.
type ChatResponse struct {
	ConversationHistory []Turn `json:"conversationHistory"`
}

// ErrorResponse is the body of every non-2xx chat response.
type ErrorResponse struct {
	Error string `json:"error"`
}
