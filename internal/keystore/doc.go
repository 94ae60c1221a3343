// Package keystore stores the upstream API key.
//
// Backends with different deployment tradeoffs:
//   - Static: key inlined in the configuration file
//   - Env: read-only environment variable access
//   - File: local filesystem storage with atomic writes and 0600 permissions
//   - Keyring: OS-native credential storage (macOS Keychain, Windows
//     Credential Manager, Linux Secret Service)
//
// The gateway only reads at request time; Write exists for `config init`.
package keystore
