// Package textutil provides small text normalization helpers shared by
// the artwork cache and catalog code.
package textutil
