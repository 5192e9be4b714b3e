// Command server runs the harborfs backend: a virtual filesystem
// provider with filename and content search, served over HTTP and
// WebSocket.
package main
