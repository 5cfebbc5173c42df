// Package tts wraps an external text-to-speech binary used to narrate
// translated chapters. The default client drives piper, feeding chapter text
// on stdin and collecting a WAV file.
package tts
