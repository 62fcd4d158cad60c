// Retain decides which timestamped records to keep under a tiered retention
// policy.
//
// Records are identifiers carrying a date-time, such as backup or snapshot
// names. Dense recent history is kept and thinned out progressively with age;
// retain prints what may be removed and never deletes anything itself.
//
// Usage:
//
//	# Print the removable snapshots of a dataset
//	zfs list -H -o name -t snapshot tank/home | retain filter
//
//	# Delete removable backups in a directory
//	retain filter --dir /var/backups -0 | xargs -0 -r rm --
//
//	# Show the active policy
//	retain policy show
//
//	# Sweep a directory every hour and serve metrics
//	retain watch --config /etc/retain/retain.yaml
//
//	# Show recorded sweeps
//	retain history list
package main

import "os"

func main() {
	os.Exit(Execute())
}
