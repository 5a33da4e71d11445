// Package llm talks to an optional hosted language model.
//
// The model is only ever asked for prose: the three narrative fields of an
// analysis and free-form chat answers. Scores and extracted data types always
// come from the analyzer package. Every function here can fail, and callers
// are expected to fall back to the heuristic text when it does.
//
// OpenAIClient speaks the OpenAI-compatible /v1/chat/completions API, which
// covers OpenAI itself, LM Studio, Ollama, vLLM and most hosted gateways.
package llm
