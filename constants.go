package fuzzyscan

import "github.com/orviska/fuzzyscan/internal/constants"

// Re-exported tunables for callers that only need the public API.
const (
	DefaultChunkSize        = constants.DefaultChunkSize
	BatchMaxGap             = constants.BatchMaxGap
	BatchMaxSize            = constants.BatchMaxSize
	ProgressUpdateBatchSize = constants.ProgressUpdateBatchSize
	ChannelSize             = constants.ChannelSize
)

// DefaultPollInterval paces callers that poll the progress channel instead
// of reading it directly.
const DefaultPollInterval = constants.DefaultPollInterval
