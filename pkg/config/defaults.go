package config

const (
	defaultStorageProvider = "sqlite"
	defaultSQLitePath      = "sadhana.db"
	defaultAPIListen       = ":8082"

	defaultEventStreamProvider = "nop"
	defaultEventStreamTopic    = "sadhana.practice"

	defaultEnrichmentModel     = "reasoner-v1"
	defaultEnrichmentTimeoutMS = 2000

	defaultAudioSampleRate   = 16000
	defaultAudioFrameSize    = 512
	defaultAudioVADThreshold = 0.015

	defaultScoringLineage = "vaishnavism"
	defaultGoldenProfile  = "maha_mantra_v1"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			Provider:   defaultStorageProvider,
			SQLitePath: defaultSQLitePath,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		EventStream: EventStreamConfig{
			Provider: defaultEventStreamProvider,
			Topic:    defaultEventStreamTopic,
		},
		Enrichment: EnrichmentConfig{
			Model:     defaultEnrichmentModel,
			TimeoutMS: defaultEnrichmentTimeoutMS,
		},
		Audio: AudioConfig{
			SampleRate:   defaultAudioSampleRate,
			FrameSize:    defaultAudioFrameSize,
			VADThreshold: defaultAudioVADThreshold,
		},
		Scoring: ScoringConfig{
			Lineage:       defaultScoringLineage,
			GoldenProfile: defaultGoldenProfile,
		},
	}
}
