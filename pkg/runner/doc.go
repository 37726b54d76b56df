// Package runner executes external commands for cellar.
//
// Every build, test, install and dependency step is one Command. The exec
// runner waits for the child to exit and turns a non-zero status into a
// COMMAND_FAILED error carrying the command line and exit code. DryRunner
// only logs, and Recorder is the scripted fake used by tests.
package runner
