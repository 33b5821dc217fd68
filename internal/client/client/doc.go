// Package client contains the CLI's building blocks for reaching the auth
// server and its local state.
//
// HTTPClient implements Client over the server's JSON API and maps error
// responses to sentinels matched with errors.Is: ErrUnauthorized (401),
// common.ErrorNotFound (404), common.ErrorConflict (400 "User exists"),
// common.ErrorValidation (other 400) and ErrUnavailable (transport errors and
// 5xx).
//
// InitDatabase opens the local SQLite database and applies the embedded
// goose migrations.
package client
