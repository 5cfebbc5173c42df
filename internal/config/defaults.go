package config

const (
	defaultInboxDir    = "~/.local/share/inkcast/inbox"
	defaultLibraryDir  = "~/library"
	defaultPodcastDir  = "~/library/podcasts"
	defaultTemplateDir = "~/.config/inkcast/templates"
	defaultLogDir      = "~/.local/share/inkcast/logs"

	defaultLLMProvider       = "openai"
	defaultLLMBaseURL        = "https://api.openai.com/v1"
	defaultLLMTimeoutSeconds = 120

	defaultChunkSize         = 4000
	defaultChunkRetries      = 5
	defaultRetryDelaySeconds = 5
	defaultMaxVariance       = 0.10

	defaultTTSBinary       = "piper"
	defaultBitrateKbps     = 64
	defaultPodcastLanguage = "en"

	defaultPublishRemote = "origin"
	defaultPublishBranch = "pages"

	defaultInboxScanInterval  = 10
	defaultQueuePollInterval  = 5
	defaultErrorRetryInterval = 10
	defaultHeartbeatInterval  = 10
	defaultHeartbeatTimeout   = 300

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			InboxDir:    defaultInboxDir,
			LibraryDir:  defaultLibraryDir,
			PodcastDir:  defaultPodcastDir,
			TemplateDir: defaultTemplateDir,
			LogDir:      defaultLogDir,
		},
		LLM: LLM{
			Provider:       defaultLLMProvider,
			BaseURL:        defaultLLMBaseURL,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Translation: Translation{
			ChunkSize:         defaultChunkSize,
			ChunkRetries:      defaultChunkRetries,
			RetryDelaySeconds: defaultRetryDelaySeconds,
			MaxVariance:       defaultMaxVariance,
		},
		Podcast: Podcast{
			TTSBinary:   defaultTTSBinary,
			BitrateKbps: defaultBitrateKbps,
			Language:    defaultPodcastLanguage,
		},
		Publish: Publish{
			Remote: defaultPublishRemote,
			Branch: defaultPublishBranch,
		},
		Workflow: Workflow{
			InboxScanInterval:  defaultInboxScanInterval,
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
			HeartbeatInterval:  defaultHeartbeatInterval,
			HeartbeatTimeout:   defaultHeartbeatTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
