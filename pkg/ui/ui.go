// Package ui renders dotlink's user-facing output: the install progress
// log, the status report and the guide. Styling comes from an embedded
// styles.yaml and is only applied when the output is a color terminal.
package ui
