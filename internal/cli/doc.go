// Package cli parses command-line arguments into an app.Config, translating
// flags into the validated configuration app.New expects.
package cli
