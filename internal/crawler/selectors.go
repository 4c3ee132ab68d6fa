package crawler

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"sjsage522/reviewworker/logger"
)

// selectorFile is the layout of a SELECTORS_FILE document
type selectorFile struct {
	Sites []SiteConfig `yaml:"sites"`
}

// LoadSiteOverrides reads a YAML selector file and replaces the matching
// tables of base by name. A site not in base is an error, since no job can
// run it. An empty path returns base unchanged.
func LoadSiteOverrides(path string, base map[string]SiteConfig) (map[string]SiteConfig, error) {
	if path == "" {
		return base, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading selectors file: %w", err)
	}
	return ParseSiteOverrides(data, base)
}

// ParseSiteOverrides applies a YAML selector document on top of base
func ParseSiteOverrides(data []byte, base map[string]SiteConfig) (map[string]SiteConfig, error) {
	var file selectorFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing selectors file: %w", err)
	}

	merged := make(map[string]SiteConfig, len(base))
	for name, site := range base {
		merged[name] = site
	}
	for _, site := range file.Sites {
		if _, ok := base[site.Name]; !ok {
			return nil, fmt.Errorf("selectors file: unknown site %q (want one of %s)",
				site.Name, strings.Join(SiteNames(base), ", "))
		}
		if err := site.Validate(); err != nil {
			return nil, err
		}
		logger.Debug("Selector table for %s loaded from file", site.Name)
		merged[site.Name] = site
	}
	return merged, nil
}
