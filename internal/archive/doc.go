// Package archive turns a remote folder into a zip file on local disk.
//
// A request moves through three stages, each strictly after the previous one
// has settled:
//
//	list   remote keys under the folder prefix, minus placeholder keys
//	fetch  every object into a per-session staging directory
//	build  a zip of the staging directory next to it
//
// Every request owns a Session whose staging directory and archive path are
// derived from a random identifier, so concurrent requests never touch the
// same files. Stager.End removes both paths and may be called any number of
// times from any goroutine.
package archive
