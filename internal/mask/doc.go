// Package mask narrows int32 label grids to the smallest unsigned
// pixel width that still represents every identifier.
package mask
