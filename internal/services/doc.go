// Package services holds the cross-cutting plumbing the export phases share:
// context annotations (job ID, phase, session ID) that flow into every log
// record, and the error taxonomy that classifies a failure so the job store
// can tell a cancellation from a genuine fault.
//
// Phase implementations wrap their failures with Wrap and one of the sentinel
// markers rather than returning raw errors; FailureStatus then derives the
// terminal job status from the marker chain.
package services
