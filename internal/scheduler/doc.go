// Package scheduler owns the job registry and runs retrieval jobs through a
// bounded worker pool. All job and unit state is guarded by one service lock;
// workers publish lifecycle and progress events as side effects of state
// transitions.
package scheduler
