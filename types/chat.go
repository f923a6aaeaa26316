package types

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message is immutable once created; sessions only ever append them.
type Message struct {
	ID      string `json:"id" yaml:"id"`
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

type ChatSession struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	CreatedAt Timestamp `json:"createdAt" yaml:"created_at"`
	Messages  []Message `json:"messages" yaml:"messages"`
}

// Clone returns a copy that shares no message storage with s.
func (s ChatSession) Clone() ChatSession {
	out := s
	out.Messages = make([]Message, len(s.Messages))
	copy(out.Messages, s.Messages)
	return out
}

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Success      bool   `json:"success"`
	SessionID    string `json:"session_id,omitempty"`
	UserMessage  string `json:"user_message,omitempty"`
	AIResponse   string `json:"ai_response,omitempty"`
	Failed       bool   `json:"failed,omitempty"` // true when the fallback reply was used
	ErrorMessage string `json:"error,omitempty"`  // only set on failure
}

type MessagesResponse struct {
	Success  bool      `json:"success"`
	Messages []Message `json:"messages"`
}

// AIChatRequest and AIChatResponse are the wire format of the completion endpoint.
type AIChatRequest struct {
	Message string `json:"message"`
}

type AIChatResponse struct {
	Response string `json:"response,omitempty"`
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
	Error    string `json:"error,omitempty"`
}
