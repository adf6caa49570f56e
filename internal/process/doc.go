// Package process manages the lifetime of external tool processes so that
// an interrupted papermate run does not leave converters or TeX engines
// running in the background.
package process
