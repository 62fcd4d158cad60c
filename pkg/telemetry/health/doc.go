// Package health provides the probe endpoints served by `retain watch`.
//
// # Endpoints
//
//   - /healthz: Liveness, 200 while the process runs
//   - /readyz: Readiness, runs every registered check; 503 if one fails
//   - /version: Build information
//
// # Usage
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("history", store.Ping)
//	checker.RegisterCheck("last_sweep", scheduler.LastError)
//	checker.Mount(mux, health.VersionInfo{Version: version})
//
// Checks run concurrently, each bounded by the checker timeout.
package health
