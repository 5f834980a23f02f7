package config

// Profile holds per-entity overrides from the configuration file.
type Profile struct {
	// Chains replaces the global chain list for this entity.
	Chains []string `yaml:"chains,omitempty"`

	// PageSize overrides the global page size when non-zero.
	PageSize int `yaml:"pageSize,omitempty"`

	// Pages overrides the global page count when non-zero.
	Pages int `yaml:"pages,omitempty"`

	// Export is the CSV export path used for this entity when --csv is not given.
	Export string `yaml:"export,omitempty"`
}

// Profile returns the overrides for an entity ID. ok is false when the file
// has no entry for it.
func (cf *File) Profile(entityID string) (Profile, bool) {
	if cf == nil {
		return Profile{}, false
	}
	p, ok := cf.Entities[entityID]
	return p, ok
}

// ApplyProfile merges the profile of entityID into cfg. Values already set
// explicitly on the command line are passed in flagged and are not overridden.
func (c *Config) ApplyProfile(entityID string, flagged map[string]bool) {
	p, ok := c.File.Profile(entityID)
	if !ok {
		return
	}
	if len(p.Chains) > 0 && !flagged["chains"] {
		c.Chains = append([]string(nil), p.Chains...)
	}
	if p.PageSize > 0 && !flagged["page-size"] {
		c.PageSize = p.PageSize
	}
	if p.Pages > 0 && !flagged["pages"] {
		c.PageCount = p.Pages
	}
	if p.Export != "" && !flagged["csv"] && c.ExportFile == "" {
		c.ExportFile = p.Export
	}
}
