// Package translator implements the chunked chapter translation loop: bounded
// per-chunk retries, recursive splitting on prompt-too-large rejections, and
// shape validation of the reassembled result.
package translator
