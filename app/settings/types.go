package settings

// DefaultLinkTemplate is used for link entries when no template is configured.
const DefaultLinkTemplate = "[{{title}}]({{url}})"

// KnownDomains lists the Cubox server regions accepted in the domain setting.
var KnownDomains = []string{"cubox.cc", "cubox.pro"}

// Settings holds the user-facing sync configuration, persisted as YAML.
// Unknown fields in the file are ignored; missing fields keep their defaults.
type Settings struct {
	Domain              string `yaml:"domain"`
	APIKey              string `yaml:"api_key"`
	SyncIntervalMinutes int    `yaml:"sync_interval_minutes"`
	LinkTemplate        string `yaml:"link_template"`
	ImageFolder         string `yaml:"image_folder"`
	ImageEmbedWidth     int    `yaml:"image_embed_width"`
	NoteFolder          string `yaml:"note_folder"`
	NoteDateFormat      string `yaml:"note_date_format"`
}

// Defaults returns the settings used when the file is absent or partial.
func Defaults() Settings {
	return Settings{
		Domain:              "",
		APIKey:              "",
		SyncIntervalMinutes: 5,
		LinkTemplate:        DefaultLinkTemplate,
		ImageFolder:         "attachments",
		ImageEmbedWidth:     0,
		NoteFolder:          "",
		NoteDateFormat:      "2006-01-02",
	}
}
