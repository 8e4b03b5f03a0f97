package config

const (
	// MaxProjectTitleLength is the maximum length for project titles.
	MaxProjectTitleLength = 255

	// MaxDocumentTitleLength is the maximum length for document titles.
	MaxDocumentTitleLength = 255

	// MaxStyleNameLength is the maximum length for author/book style names.
	MaxStyleNameLength = 120

	// MaxBatchDocuments caps how many documents one outline conversion may append.
	// Outlines longer than this are almost always a malformed model response.
	MaxBatchDocuments = 100

	// MaxPromptTextLength bounds the user text forwarded to the completion service.
	MaxPromptTextLength = 50_000

	// MaxTopicLength bounds a nonfiction outline topic.
	MaxTopicLength = 1000

	// MaxMutationAttempts is how many times a targeted project write is retried
	// after losing an optimistic-concurrency race.
	MaxMutationAttempts = 3
)
