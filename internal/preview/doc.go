// Package preview renders label masks as color images for quick
// visual inspection; masks themselves are near-black in ordinary
// viewers because labels start at 1.
package preview
