// Package media wraps ffmpeg and ffprobe for podcast audio: transcoding
// synthesized WAV narration to MP3 and measuring episode duration.
package media
