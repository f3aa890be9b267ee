// Package tiffio writes label masks as single-channel grayscale TIFF
// files with a minisblack interpretation.
package tiffio
