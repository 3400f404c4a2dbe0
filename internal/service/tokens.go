package service

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// fallbackEncoding is used for models tiktoken does not know, which covers
// most OpenRouter, Ollama and Gemini model names.
const fallbackEncoding = "cl100k_base"

var encodings sync.Map // model name -> *tiktoken.Tiktoken

func encodingFor(model string) (*tiktoken.Tiktoken, error) {
	if enc, ok := encodings.Load(model); ok {
		return enc.(*tiktoken.Tiktoken), nil
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			return nil, err
		}
	}
	encodings.Store(model, enc)
	return enc, nil
}

// estimateUsage counts tokens locally for backends that report no usage.
// It returns the zero UsageInfo if no encoding is available.
func estimateUsage(model, systemPrompt, userInput, completion string) UsageInfo {
	enc, err := encodingFor(model)
	if err != nil {
		return UsageInfo{}
	}
	prompt := len(enc.Encode(systemPrompt, nil, nil)) + len(enc.Encode(userInput, nil, nil))
	out := len(enc.Encode(completion, nil, nil))
	return UsageInfo{
		PromptTokens:     prompt,
		CompletionTokens: out,
		TotalTokens:      prompt + out,
		Estimated:        true,
	}
}
