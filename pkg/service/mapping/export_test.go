package mapping

// LLMMapping is exported for testing
type LLMMapping = llmMapping

// MergeSuggestions is exported for testing
var MergeSuggestions = mergeSuggestions

// SplitLinks is exported for testing
var SplitLinks = splitLinks

// ResponseSchema is exported for testing
var ResponseSchema = responseSchema
