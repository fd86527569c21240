// Package nlp provides the chat client used by the LLM topic classifier.
//
// The Client interface is implemented by OpenAIClient, which talks to
// OpenAI or any OpenAI-compatible API (Ollama, vLLM, LM Studio) through a
// custom base URL.
//
// # Usage
//
//	client, err := nlp.NewOpenAIClient(apiKey, nlp.Config{
//		Model:   "llama3.1",
//		BaseURL: "http://localhost:11434",
//	})
//	resp, err := client.ChatWithStructuredOutput(ctx, []nlp.Message{
//		nlp.NewSystemMessage("Reply with JSON."),
//		nlp.NewUserMessage(prompt),
//	}, nil)
//
// # Error Handling
//
// Failed completions return a *CompletionError carrying the model name.
// Match its kind with errors.Is against ErrRateLimit, ErrRefusal or
// ErrEmptyResponse.
package nlp
