package source

import "strings"

// DefaultAIKeywords is the base set used for matching AI/ML-related content
// in the collectors that are not query-targeted (Hacker News, RSS).
var DefaultAIKeywords = []string{
	"artificial intelligence", "machine learning", "deep learning",
	"neural network", "LLM", "large language model", "GPT",
	"transformer", "diffusion", "computer vision",
	"NLP", "natural language processing",
	"generative AI", "gen AI", "genai",
	"AGI", "reinforcement learning", "fine-tuning", "fine tuning",
	"RAG", "retrieval augmented", "vector database", "embedding",
	"inference", "AI agent", "agentic",
	"copilot", "chatbot", "foundation model",
	"llama", "mistral", "gemini", "openai", "anthropic", "claude",
	"hugging face", "huggingface", "pytorch", "tensorflow",
	"multimodal", "AI safety", "alignment",
	"AI coding", "code generation", "AI assistant",
}

// Filter holds keyword lists for content matching.
type Filter struct {
	keywords []string
	exclude  []string
}

// NewFilter creates a filter with the default AI keywords plus extras.
func NewFilter(extraKeywords, excludeKeywords []string) *Filter {
	keywords := make([]string, len(DefaultAIKeywords))
	copy(keywords, DefaultAIKeywords)
	keywords = append(keywords, extraKeywords...)

	// Lowercase for case-insensitive matching.
	for i, kw := range keywords {
		keywords[i] = strings.ToLower(kw)
	}

	exclude := make([]string, len(excludeKeywords))
	for i, kw := range excludeKeywords {
		exclude[i] = strings.ToLower(kw)
	}

	return &Filter{keywords: keywords, exclude: exclude}
}

// Matches returns true if text contains AI-related keywords and none of the
// excluded ones.
func (f *Filter) Matches(text string) bool {
	lower := strings.ToLower(text)

	for _, ex := range f.exclude {
		if strings.Contains(lower, ex) {
			return false
		}
	}

	for _, kw := range f.keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
