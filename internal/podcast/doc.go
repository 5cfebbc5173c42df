// Package podcast turns rendered chapters into podcast episodes: narrated
// MP3 audio, one RSS item fragment per episode, and a channel feed rebuilt by
// splicing fragments into a template at a placeholder comment.
package podcast
