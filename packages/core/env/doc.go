// Package env captures the environment variables that act as a
// configuration source for requests.
//
// The recognized variables (BASIC_USER, BASIC_PASS, PROXY_HOST, PROXY_PORT,
// PROXY_USER, PROXY_PASS) are read once at startup into an immutable
// Snapshot. Resolution works only on the snapshot and never touches the
// ambient environment again.
package env
