// Package errors provides coded errors for cellar.
//
// Every failure surfaced to the user carries an ErrorCode, so tests and the
// CLI can branch on the category (checksum mismatch, build failure, ...)
// without matching on message text. Details hold the failing command, its
// exit code and the install stage it belonged to.
package errors
