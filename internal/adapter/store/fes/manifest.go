package fes

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"go.ngs.io/tidegrid/internal/domain"
)

// DefaultEpsilon is the axis tolerance used when a manifest omits it.
const DefaultEpsilon = 1e-6

// ErrInvalidManifest is returned for manifests that cannot describe a model.
var ErrInvalidManifest = errors.New("invalid model manifest")

// Variables names the NetCDF variables read from every constituent file.
type Variables struct {
	Latitude  string `yaml:"latitude"`
	Longitude string `yaml:"longitude"`
	Amplitude string `yaml:"amplitude"`
	Phase     string `yaml:"phase"`
}

// DefaultVariables returns the CF names used by FES distributions.
func DefaultVariables() Variables {
	return Variables{
		Latitude:  "latitude",
		Longitude: "longitude",
		Amplitude: "amplitude",
		Phase:     "phase",
	}
}

// Manifest describes a tidal model as one NetCDF file per constituent.
//
//	name: FES2022b
//	precision: float32
//	variables:
//	  latitude: lat
//	  longitude: lon
//	epsilon: 1.0e-6
//	constituents:
//	  M2: ocean_tide/m2.nc
//	  K1: ocean_tide/k1.nc
type Manifest struct {
	Name string `yaml:"name"`
	// Precision forces "float32" or "float64"; empty follows the data.
	Precision    string            `yaml:"precision,omitempty"`
	Variables    Variables         `yaml:"variables"`
	Epsilon      float64           `yaml:"epsilon,omitempty"`
	Constituents map[string]string `yaml:"constituents"`

	// dir resolves relative constituent paths.
	dir string
}

// ReadManifest parses the manifest at path.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return ParseManifest(bytes.NewReader(data), filepath.Dir(path))
}

// ParseManifest decodes a manifest whose relative paths are resolved
// against dir.
func ParseManifest(r io.Reader, dir string) (*Manifest, error) {
	m := &Manifest{Variables: DefaultVariables(), dir: dir}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}
	m.applyDefaults()
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manifest) applyDefaults() {
	def := DefaultVariables()
	if m.Variables.Latitude == "" {
		m.Variables.Latitude = def.Latitude
	}
	if m.Variables.Longitude == "" {
		m.Variables.Longitude = def.Longitude
	}
	if m.Variables.Amplitude == "" {
		m.Variables.Amplitude = def.Amplitude
	}
	if m.Variables.Phase == "" {
		m.Variables.Phase = def.Phase
	}
	if m.Epsilon == 0 {
		m.Epsilon = DefaultEpsilon
	}
}

// Validate checks the manifest without opening any file.
func (m *Manifest) Validate() error {
	if len(m.Constituents) == 0 {
		return fmt.Errorf("%w: no constituents", ErrInvalidManifest)
	}
	switch m.Precision {
	case "", "float32", "float64":
	default:
		return fmt.Errorf("%w: precision %q", ErrInvalidManifest, m.Precision)
	}
	if m.Epsilon < 0 {
		return fmt.Errorf("%w: negative epsilon", ErrInvalidManifest)
	}
	_, err := m.Files()
	return err
}

// File is one constituent of a manifest.
type File struct {
	Constituent domain.Constituent
	Path        string
}

// Files returns the constituent files in catalog order with resolved paths.
func (m *Manifest) Files() ([]File, error) {
	files := make([]File, 0, len(m.Constituents))
	var seen domain.Set
	for name, path := range m.Constituents {
		c, err := domain.ParseConstituent(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
		}
		if seen.Has(c) {
			return nil, fmt.Errorf("%w: constituent %s listed twice", ErrInvalidManifest, c)
		}
		seen.Add(c)
		if path == "" {
			return nil, fmt.Errorf("%w: empty path for %s", ErrInvalidManifest, c)
		}
		if !filepath.IsAbs(path) && m.dir != "" {
			path = filepath.Join(m.dir, path)
		}
		files = append(files, File{Constituent: c, Path: path})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Constituent < files[j].Constituent })
	return files, nil
}

// Write encodes the manifest as YAML.
func (m *Manifest) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return enc.Close()
}

// WriteFile writes the manifest to path.
func (m *Manifest) WriteFile(path string) error {
	var buf bytes.Buffer
	if err := m.Write(&buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
