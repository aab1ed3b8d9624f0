// Package http builds and sends the single HTTP exchange the tool performs.
//
// It wraps the standard library's http package with:
//   - Descriptor construction from a resolved request (implicit headers,
//     ordered form encoding, basic-auth injection)
//   - Proxy wiring via URL userinfo
//   - Per-attempt timing samples
//   - Transport failure classification for retry accounting
package http
