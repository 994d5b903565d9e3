// Package cli renders the progress of a comparison run on the terminal:
// a spinner while servers come up, one status line per state and a summary
// table once the run is over.
package cli
