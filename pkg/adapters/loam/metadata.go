package loam

// EntryMetadata is the frontmatter stored alongside each value.
// The value itself lives in the document body.
type EntryMetadata struct {
	Key     string `json:"key" yaml:"key" mapstructure:"key"`
	Deleted bool   `json:"deleted,omitempty" yaml:"deleted,omitempty" mapstructure:"deleted"`
}
