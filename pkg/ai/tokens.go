package ai

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const fallbackEncoding = "cl100k_base"

var (
	encodingsMu sync.Mutex
	encodings   = map[string]*tiktoken.Tiktoken{}
)

// CountTokens оценивает число токенов в тексте для модели.
// Для моделей, неизвестных tiktoken, используется cl100k_base;
// если и она недоступна - грубая оценка по длине.
func CountTokens(model, text string) int {
	if text == "" {
		return 0
	}
	if enc := encodingFor(model); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return (len([]rune(text)) + 3) / 4
}

func encodingFor(model string) *tiktoken.Tiktoken {
	encodingsMu.Lock()
	defer encodingsMu.Unlock()

	if enc, ok := encodings[model]; ok {
		return enc
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			enc = nil
		}
	}
	encodings[model] = enc
	return enc
}

func estimateUsage(model, prompt, completion string) Usage {
	p := CountTokens(model, prompt)
	c := CountTokens(model, completion)
	return Usage{
		PromptTokens:     p,
		CompletionTokens: c,
		TotalTokens:      p + c,
		Estimated:        true,
	}
}
