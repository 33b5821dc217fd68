// Package cli provides the interactive shopauth command-line client.
//
// It wires configuration, the local session database and the HTTP API
// client behind a small REPL. On start it tries to resume the session saved
// by a previous run, then watches server reachability in the background.
//
// Commands: register, login, profile, refresh, logout, help, exit.
package cli
