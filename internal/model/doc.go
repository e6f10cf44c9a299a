package model

// Package model defines domain data structures used across the app: retrieval
// jobs and their units, status enums, the typed metadata view over extractor
// output, and download history entries. Live jobs and units are mutated under
// the owning scheduler's lock; Clone/View copies are safe to hand out.
