// Package speech exposes a text-to-speech engine over HTTP. The engine
// is loaded before the server starts and held by the server value, so
// there is no global model state; handlers read it from their receiver.
package speech
