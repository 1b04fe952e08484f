// Package config holds defaults and viper wiring for the CLI.
package config

import (
	"github.com/spf13/viper"

	"phenofetch/internal/catalog"
)

// Defaults applied when neither config file, environment, nor flags set a
// value. A zero Concurrency means size the pool from the host at runtime.
const (
	DefaultSavePath      = "phenocam_data"
	DefaultHost          = catalog.DefaultHost
	DefaultBatchSize     = 50
	DefaultConcurrency   = 0
	DefaultTimeoutSec    = 30
	DefaultBatchPauseSec = 1
	DefaultDayWorkers    = 1
	DefaultCachePath     = "phenofetch.cache"
	DefaultIndexPath     = "phenofetch.bleve"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
)

// SetDefaults registers every default with viper, so config files and
// PHENOFETCH_* environment variables only need to name what they change.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("savepath", DefaultSavePath)
	v.SetDefault("host", DefaultHost)
	v.SetDefault("batchsize", DefaultBatchSize)
	v.SetDefault("concurrency", DefaultConcurrency)
	v.SetDefault("timeoutsec", DefaultTimeoutSec)
	v.SetDefault("batchpausesec", DefaultBatchPauseSec)
	v.SetDefault("dayworkers", DefaultDayWorkers)
	v.SetDefault("usecache", false)
	v.SetDefault("cachepath", DefaultCachePath)
	v.SetDefault("buildindex", false)
	v.SetDefault("indexpath", DefaultIndexPath)
	v.SetDefault("loglevel", DefaultLogLevel)
	v.SetDefault("logformat", DefaultLogFormat)
}
