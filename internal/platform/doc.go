package platform

// Package platform contains OS/platform integration and external tooling glue:
// the default download location, filesystem helpers used to locate finished
// downloads, playlist listing via the ytdlp library, and OS open/reveal.
