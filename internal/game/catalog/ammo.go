package catalog

// AmmoEntry is one cartridge option for a caliber.
type AmmoEntry struct {
	Tpl                 string  `yaml:"tpl" json:"tpl"`
	RelativeProbability float64 `yaml:"relative_probability" json:"relativeProbability"`
}

// AmmoDistribution maps a caliber to its weighted cartridge options.
type AmmoDistribution map[string][]AmmoEntry

// ForCaliber returns the entries for caliber. When the caliber has no entry,
// its alias (if any) is tried instead.
func (d AmmoDistribution) ForCaliber(caliber string, aliases map[string]string) []AmmoEntry {
	if entries, ok := d[caliber]; ok && len(entries) > 0 {
		return entries
	}
	if alias, ok := aliases[caliber]; ok {
		return d[alias]
	}
	return nil
}
