// Package llm wraps the chat completion endpoints used for chapter
// translation. It speaks two dialects, OpenAI-compatible and Gemini, behind a
// single Complete call and classifies prompt-too-large rejections so callers
// can split the input.
package llm
