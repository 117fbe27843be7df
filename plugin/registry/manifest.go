package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/chicogong/histreamer/plugin"
)

// ManifestDescriptor is a statically-linked plugin made discoverable at
// runtime through a YAML manifest file, rather than a dynamically loaded
// library (Go has no portable dlopen-equivalent ABI for this; see
// DESIGN.md's Open Question resolution for §4.3/§9's "dynamic plugin"
// requirement). The manifest carries everything but the Creator func,
// which must already be registered in-process under Name by a static
// import — WatchDir only (re)validates and republishes the RegInfo's
// metadata, it never loads code.
type ManifestDescriptor struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Rank     int    `yaml:"rank"`
	APIMajor uint16 `yaml:"api_major"`
	APIMinor uint16 `yaml:"api_minor"`
	Enabled  bool   `yaml:"enabled"`
	License  string `yaml:"license"`
}

func parseType(s string) plugin.Type {
	switch strings.ToLower(s) {
	case "source":
		return plugin.TypeSource
	case "demuxer":
		return plugin.TypeDemuxer
	case "codec":
		return plugin.TypeCodec
	case "audiosink":
		return plugin.TypeAudioSink
	case "videosink":
		return plugin.TypeVideoSink
	default:
		return plugin.TypeInvalid
	}
}

// LoadManifest parses one YAML manifest file into a ManifestDescriptor.
func LoadManifest(path string) (ManifestDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ManifestDescriptor{}, err
	}
	var d ManifestDescriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return ManifestDescriptor{}, err
	}
	return d, nil
}

// ApplyManifest updates the rank (and, when set, API version and license)
// of an already-statically-registered plugin descriptor of the manifest's
// (type, name); a manifest with enabled: false is ignored. It never
// creates a brand new Creator func out of thin air.
func (r *Registry) ApplyManifest(d ManifestDescriptor) error {
	t := parseType(d.Type)
	if t == plugin.TypeInvalid {
		return fmt.Errorf("registry: manifest %q has unknown plugin type %q", d.Name, d.Type)
	}
	if !d.Enabled {
		return nil
	}
	info, err := r.Get(t, d.Name)
	if err != nil {
		return err
	}
	info.Rank = d.Rank
	if d.APIMajor != 0 {
		info.APIVersion = plugin.APIVersion{Major: d.APIMajor, Minor: d.APIMinor}
	}
	if d.License != "" {
		info.License = d.License
	}
	return r.Register(info)
}

// WatchDir watches dir for added/modified *.yaml manifest files and applies
// them to r as they appear, letting deployments re-rank plugins without a
// rebuild; a manifest cannot disable or unregister a plugin. The returned stop func closes the underlying watcher;
// callers should defer it. WatchDir performs one synchronous initial scan
// before returning, then continues watching in a background goroutine.
func (r *Registry) WatchDir(dir string) (stop func() error, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.IsDir() || !isYAML(e.Name()) {
			continue
		}
		r.loadAndApply(filepath.Join(dir, e.Name()))
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !isYAML(ev.Name) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					r.loadAndApply(ev.Name)
				}
			case werr, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn().Err(werr).Str("dir", dir).Msg("plugin manifest watch error")
			}
		}
	}()

	return w.Close, nil
}

func (r *Registry) loadAndApply(path string) {
	d, err := LoadManifest(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("failed to parse plugin manifest")
		return
	}
	if err := r.ApplyManifest(d); err != nil {
		log.Warn().Err(err).Str("path", path).Str("plugin", d.Name).Msg("failed to apply plugin manifest")
	}
}

func isYAML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
