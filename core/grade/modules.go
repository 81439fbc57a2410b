package grade

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	appfs "github.com/trezcool/releve/fs"
)

// ModuleNames maps UE codes to their display labels.
type ModuleNames map[string]string

// Name returns the label of a UE, or the code itself.
func (mn ModuleNames) Name(ue string) string {
	if name, ok := mn[ue]; ok && name != "" {
		return name
	}
	return ue
}

type modulesFile struct {
	Modules map[string]string `yaml:"modules"`
}

// ReadModuleNames decodes a `modules: {CODE: label}` YAML document.
func ReadModuleNames(r io.Reader) (ModuleNames, error) {
	var mf modulesFile
	if err := yaml.NewDecoder(r).Decode(&mf); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "decoding module names")
	}
	names := make(ModuleNames, len(mf.Modules))
	for ue, name := range mf.Modules {
		names[ue] = name
	}
	return names, nil
}

// LoadModuleNames returns the embedded table, overridden by the entries of
// `overridePath` when given.
func LoadModuleNames(overridePath string) (ModuleNames, error) {
	f, err := appfs.FS.Open("modules.yaml")
	if err != nil {
		return nil, errors.Wrap(err, "opening embedded module names")
	}
	defer func() { _ = f.Close() }()
	names, err := ReadModuleNames(f)
	if err != nil {
		return nil, err
	}

	if overridePath == "" {
		return names, nil
	}
	of, err := os.Open(overridePath)
	if err != nil {
		return nil, errors.Wrap(err, "opening module names override")
	}
	defer func() { _ = of.Close() }()
	overrides, err := ReadModuleNames(of)
	if err != nil {
		return nil, err
	}
	for ue, name := range overrides {
		names[ue] = name
	}
	return names, nil
}
