package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Returns the prompt content and any error encountered.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptAnswerSystem instructs the model to answer only from context and
	// reply with a JSON object {answer, confidence, source_text}.
	// This prompt has no format placeholders.
	PromptAnswerSystem = "answer_system"

	// PromptAnswerUser carries the retrieved context and the question.
	// The template expects %s (context) and %s (question) placeholders.
	PromptAnswerUser = "answer_user"

	// PromptExtractionSystem instructs the model to return the shipment record as JSON.
	// This prompt has no format placeholders.
	PromptExtractionSystem = "extraction_system"

	// PromptExtractionUser carries the document text.
	// The template expects a %s placeholder for the text.
	PromptExtractionUser = "extraction_user"

	// PromptSuggestQuestions asks for questions a user might ask about a document.
	// The template expects a %s placeholder for a text excerpt.
	PromptSuggestQuestions = "suggest_questions"
)

// PromptStoreAware is an optional interface for services that can use custom prompts.
// Services implementing this interface can have their prompt templates customised
// by injecting a PromptStore after construction.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service should use hardcoded default prompts.
	SetPromptStore(store PromptStore)
}
