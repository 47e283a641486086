package ai

import "github.com/pkoukk/tiktoken-go"

// truncateToTokens bounds text to max tokens for the given model so long
// transcripts cannot blow the summary model's context window. Returns the
// input unchanged when counting is unavailable or max is not positive.
func truncateToTokens(text, modelName string, max int) string {
	if max <= 0 || text == "" {
		return text
	}
	enc, err := tiktoken.EncodingForModel(modelName)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return text
		}
	}
	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= max {
		return text
	}
	return enc.Decode(tokens[:max])
}
