package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Feed names one RSS or Atom feed the collector should pull from.
type Feed struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// feedsFile represents the structure of the optional feeds YAML file.
type feedsFile struct {
	Feeds []Feed `yaml:"feeds"`
}

// DefaultFeeds is used when no feeds file is configured.
var DefaultFeeds = []Feed{
	{Name: "Hacker News", URL: "https://news.ycombinator.com/rss"},
	{Name: "The Verge", URL: "https://www.theverge.com/rss/index.xml"},
	{Name: "Ars Technica", URL: "https://feeds.arstechnica.com/arstechnica/technology-lab"},
}

// LoadFeeds loads the feed list from a YAML file. An empty path or a missing
// file is not an error; the built-in defaults are returned instead. A file
// that exists but cannot be parsed is an error.
func LoadFeeds(path string) ([]Feed, error) {
	if path == "" {
		return DefaultFeeds, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultFeeds, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read feeds file: %w", err)
	}

	var ff feedsFile
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("failed to parse feeds file: %w", err)
	}

	if len(ff.Feeds) == 0 {
		return DefaultFeeds, nil
	}

	return ff.Feeds, nil
}
