package persona

const (
	// CompanionID is the chat persona used on the talk screen.
	CompanionID = "companion"
	// JournalAnalystID summarises journal entries.
	JournalAnalystID = "journal-analyst"
)

// Persona captures a fixed system instruction and the reply budget that goes with it.
type Persona struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	SystemPrompt string `json:"systemPrompt"`
	// UserPrefix 会拼接在用户输入之前，例如日记分析的 "My journal entry: "。
	UserPrefix string `json:"userPrefix,omitempty"`
	Greeting   string `json:"greeting,omitempty"`
	MaxTokens  int    `json:"maxTokens"`
	// EmptyReply is shown when the endpoint answers without a completion.
	EmptyReply string `json:"emptyReply"`
	// FailureReply masks any transport or endpoint failure.
	FailureReply string `json:"failureReply"`
}

// Seed provides the two built-in personas.
func Seed() []Persona {
	return []Persona{
		{
			ID:           CompanionID,
			Name:         "mindBFF",
			SystemPrompt: "You are a supportive, empathetic AI best friend focused on mental health support. Keep responses concise and friendly. Remember previous conversations to provide continuity.",
			Greeting:     "Hey there! I'm your AI best friend. How are you feeling today?",
			MaxTokens:    300,
			EmptyReply:   "Sorry, I couldn't process that.",
			FailureReply: "Sorry, I couldn't process your message. Please try again.",
		},
		{
			ID:           JournalAnalystID,
			Name:         "Journal insights",
			SystemPrompt: "You are a supportive, empathetic AI assistant specializing in mental health. Analyze the journal entry and provide a brief, insightful summary (max 3 sentences) highlighting key emotions, patterns, and offering gentle perspective. Be warm and supportive.",
			UserPrefix:   "My journal entry: ",
			MaxTokens:    150,
			EmptyReply:   "Couldn't generate a summary. Please try again.",
			FailureReply: "I couldn't analyze your entry right now. Please try again later.",
		},
	}
}
