// Package integration runs the pipeline tracker end to end against fake Gerrit
// and stage servers, covering reconciliation, pruning and the query API.
package integration
