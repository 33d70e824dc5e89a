package generate

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/chazu/vkbind/api"
	"github.com/chazu/vkbind/config"
	"github.com/chazu/vkbind/registry"
	"github.com/chazu/vkbind/vkrt"
)

// LoadInputs reads the files named in cfg.
func LoadInputs(cfg *config.Config) (Inputs, error) {
	var in Inputs
	if cfg.Input.Declarations == "" {
		return in, fmt.Errorf("input.declarations is not set")
	}
	path := cfg.Path(cfg.Input.Declarations)
	data, err := os.ReadFile(path)
	if err != nil {
		return in, fmt.Errorf("cannot read %s: %w", path, err)
	}
	in.Declarations = string(data)

	switch {
	case cfg.Input.APIs != "":
		in.APIs, err = api.Load(cfg.Path(cfg.Input.APIs))
		if err != nil {
			return in, err
		}
	case cfg.Input.Registry != "":
		in.APIs, err = loadRegistry(cfg)
		if err != nil {
			return in, err
		}
	default:
		log.Warning("no API description configured; the loader will be empty")
	}
	return in, nil
}

func loadRegistry(cfg *config.Config) (*api.Description, error) {
	path := cfg.Path(cfg.Input.Registry)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	defer f.Close()

	maxVersion, err := vkrt.ParseVersion(cfg.Input.APIVersion)
	if err != nil {
		return nil, fmt.Errorf("input.api-version: %w", err)
	}
	d := cfg.Dialect.WithDefaults()
	desc, err := registry.Describe(f, registry.Options{
		MaxVersion:     maxVersion,
		InstanceHandle: d.CamelPrefix + d.InstanceHandle,
		DeviceHandle:   d.CamelPrefix + d.DeviceHandle,
	})
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	return desc, nil
}

// Write stores the generated files in the configured output directory and
// returns their paths.
func Write(cfg *config.Config, res *Result) ([]string, error) {
	dir := cfg.OutputDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	var written []string
	for _, out := range []struct {
		name string
		code []byte
	}{
		{cfg.Output.Bindings, res.Bindings},
		{cfg.Output.Loader, res.Loader},
	} {
		path := filepath.Join(dir, out.name)
		if err := os.WriteFile(path, out.code, 0o644); err != nil {
			return written, fmt.Errorf("writing %s: %w", path, err)
		}
		log.Infof("wrote %s", path)
		written = append(written, path)
	}
	return written, nil
}
