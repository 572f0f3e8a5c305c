// Package transcript persists debate transcripts as plain text.
//
// FileSink appends to an existing file and never rewrites it, so a single
// file can accumulate several sessions. Nop is used when no path is
// configured.
package transcript
