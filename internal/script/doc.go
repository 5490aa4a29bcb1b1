// Package script holds the text-emission primitives used to generate
// pywinauto scripts: literal rendering, an indenting writer, and the
// per-compile declaration set that deduplicates imports, module variables,
// helper functions and exception handlers.
package script
