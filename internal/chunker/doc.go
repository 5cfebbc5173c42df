// Package chunker cuts chapter text into bounded-size chunks for translation
// requests and halves over-large chunks when the endpoint rejects a prompt.
package chunker
