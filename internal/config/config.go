package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/snaphist/snaphist/internal/policy"
)

// GetStoragePath returns the SQLite database location
func GetStoragePath() string {
	return viper.GetString("storage.path")
}

// GetAdmissionMode returns the configured admission mode
func GetAdmissionMode() policy.Mode {
	return policy.Mode(viper.GetString("admission.mode"))
}

// GetChangedLinesThreshold returns the significant-change line threshold
func GetChangedLinesThreshold() int {
	return viper.GetInt("admission.changed_lines")
}

// GetListLimit returns the default number of snapshots shown per file
func GetListLimit() int {
	return viper.GetInt("snapshot.list_limit")
}

// GetReconcileInterval returns the reconciler tick interval
func GetReconcileInterval() time.Duration {
	return time.Duration(viper.GetInt("reconcile.interval_seconds")) * time.Second
}

// GetAutoCleanup reports whether reconciliation collapses history to the
// labeled snapshot
func GetAutoCleanup() bool {
	return viper.GetBool("reconcile.auto_cleanup")
}

// GetExportDestination returns the configured export destination, which may
// be a directory or a file path
func GetExportDestination() string {
	return viper.GetString("export.destination")
}

// GetWatchIgnore returns glob patterns excluded from watching
func GetWatchIgnore() []string {
	return viper.GetStringSlice("watch.ignore")
}

// NewAdmitter builds the admission policy from configuration
func NewAdmitter() *policy.Admitter {
	a := policy.New(GetAdmissionMode())
	if n := GetChangedLinesThreshold(); n > 0 {
		a.ChangedLines = n
	}
	return a
}
