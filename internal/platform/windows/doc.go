// Package windows provides the Windows recording backend: element lookup
// through UI Automation (the same tree pywinauto's uia backend searches),
// screen outlines drawn with GDI, and global input capture through
// low-level hooks.
// On other platforms the package compiles empty and registers nothing.
package windows
