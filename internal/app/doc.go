// Package app contains the core application logic. It wires the queue,
// worker pool, and scheduler together behind a single App, decoupled from
// any specific entrypoint like a CLI.
package app
