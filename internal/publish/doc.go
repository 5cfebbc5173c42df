// Package publish commits rendered chapters to the static-site git
// repository. Push rejections are fatal and left for manual resolution.
package publish
