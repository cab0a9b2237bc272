// Package common contains shared constants and small helpers used across
// console components.
package common

// TokenHeaderName carries the opaque session token on outbound requests.
// The backend also accepts "Authorization: Bearer", which is left to reverse
// proxies doing Basic auth.
const TokenHeaderName = "X-NFCGate-Token"

// RequestIDHeaderName is attached to every outbound request for log correlation.
const RequestIDHeaderName = "X-Request-ID"
