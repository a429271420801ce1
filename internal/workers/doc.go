// Package workers provides utilities for determining worker pool sizes
// in containerized environments.
//
// Go 1.19+ sets GOMAXPROCS from container CPU limits automatically, while
// runtime.NumCPU() still reports the host CPU count. The helpers here size
// pools from GOMAXPROCS so that sidecar scanning and derivative generation
// respect cgroup limits, with an operator override via SCAN_WORKERS.
package workers
