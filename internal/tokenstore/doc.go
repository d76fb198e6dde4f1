// Package tokenstore persists the login result for later pipeline steps.
//
// The record is written as JSON to a well-known file name inside the runner's
// temporary directory:
//
//	<dir>/meshstack_token.json  {"token":"...","baseUrl":"..."}
//
// Each run overwrites the previous file. Writes are not atomic and the file is
// not locked; the host runs a single login per job.
package tokenstore
