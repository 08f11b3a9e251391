package snapshot

// Config holds snapshot persistence settings.
type Config struct {
	// Path is the local JSON snapshot file. Empty disables the file sink.
	Path string `mapstructure:"path" default:"data/records.json"`
	// ObjectName is the key used when uploading to object storage.
	ObjectName string `mapstructure:"object_name" default:"snapshots/records.json"`
	// Upload enables the object storage sink.
	Upload bool `mapstructure:"upload" default:"false"`
}
