package cfg

type Cfg struct {
	// Paths
	SettingsFile string
	VaultDir     string
	DBPath       string

	// HTTP server
	Port         string
	APIAccessKey string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	LogFile   string
	Once      bool
	Version   string
}
