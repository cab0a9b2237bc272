package models

// Health is the backend liveness/configuration snapshot. Optional values are
// nil when the backend did not report them.
type Health struct {
	Status           string
	Server           string
	DBConfigured     bool
	ProtobufIndexing bool
	StartedUnix      *int64
	UptimeSeconds    *int64
	LogBytesMode     string
	DBFileBytes      *int64
	Counts           *HealthCounts
	Latest           *HealthLatest
	Retention        *Retention
}

type HealthCounts struct {
	Logs       int64
	APDUEvents int64
	Payloads   *int64
}

type HealthLatest struct {
	LogTSUnix  *int64
	APDUTSUnix *int64
}

// Retention mirrors the backend's cleanup settings; zero days disables a sweep.
type Retention struct {
	DBDays       int64
	JSONLDays    int64
	SweepSeconds int64
}
