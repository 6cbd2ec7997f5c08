// Package tus provides a client for the tus resumable upload protocol,
// version 1.0.0 (https://tus.io).
//
// tus is a protocol based on HTTP for resumable file uploads. Resumable
// means an upload can be interrupted at any moment and resumed later
// without re-uploading the already-accepted bytes. An interruption may
// happen willingly, if the caller wants to pause, or by accident in case
// of a network issue or server outage.
package tus
