// SPDX-License-Identifier: MIT

// Package pipeline orchestrates a change-detection request end to end:
//
//	composite (before/after windows) → iw or IR-MAD → change mask → polygons
//
// Data acquisition is injected through CompositeProvider; the pipeline
// holds no process-wide state. Every failure is reported as a *StageError
// naming the request and the stage. Batch runs many requests and records
// failures per request instead of aborting.
package pipeline
