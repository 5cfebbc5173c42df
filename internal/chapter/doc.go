// Package chapter parses uploaded novel-chapter JSON files and the
// <source>-<bookid>-<index>.json naming convention the inbox scanner relies on.
package chapter
