// Package pipeline turns subscription files or one set of dl arguments into
// jobs and runs them strictly in order.
//
// Every definition is resolved before the first job is built, so a typo in
// the last file fails the run before anything is downloaded. Jobs then run
// one at a time; the first error stops the batch and is returned unchanged
// for the failure boundary to classify.
package pipeline
