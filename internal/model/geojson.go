package model

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/simplify"

	"github.com/banshee-data/edge-sentinel/internal/monitoring"
	"github.com/banshee-data/edge-sentinel/internal/units"
)

// maxModelSize bounds model files read from disk.
const maxModelSize = 256 * 1024 * 1024 // 256MB

// Options controls how a model is read.
type Options struct {
	// Units overrides the collection's "units" member. Empty means use the
	// member, or metres when it is absent.
	Units string
	// SimplifyTolerance, when positive, runs Douglas-Peucker over floor
	// rings (in metres) before edges are built.
	SimplifyTolerance float64
	// Strict turns unknown categories and unsupported geometries into
	// load errors instead of log lines.
	Strict bool
}

// LoadGeoJSON reads and parses a GeoJSON FeatureCollection from path.
func LoadGeoJSON(path string, opts Options) (*Document, error) {
	cleanPath := filepath.Clean(path)
	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat model file: %w", err)
	}
	if info.Size() > maxModelSize {
		return nil, fmt.Errorf("model file too large: %d bytes (max %d)", info.Size(), maxModelSize)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}
	doc, err := ParseGeoJSON(data, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cleanPath, err)
	}
	return doc, nil
}

// ParseGeoJSON builds a Document from GeoJSON FeatureCollection bytes.
func ParseGeoJSON(data []byte, opts Options) (*Document, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GeoJSON: %w", err)
	}

	unit := opts.Units
	if unit == "" {
		if s, ok := fc.ExtraMembers["units"].(string); ok {
			unit = s
		} else {
			unit = units.Metres
		}
	}
	if !units.IsValid(unit) {
		return nil, fmt.Errorf("units must be one of %s, got %q", units.GetValidUnitsString(), unit)
	}

	doc := &Document{Units: unit, byID: make(map[string]*Floor)}
	for i, f := range fc.Features {
		if err := doc.add(i, f, unit, opts); err != nil {
			if opts.Strict {
				return nil, fmt.Errorf("feature %d: %w", i, err)
			}
			monitoring.Logf("ignoring feature %d: %v", i, err)
			doc.Ignored++
		}
	}
	return doc, nil
}

func (d *Document) add(index int, f *geojson.Feature, unit string, opts Options) error {
	cat, err := ParseCategory(f.Properties.MustString("category", ""))
	if err != nil {
		return err
	}
	id := featureID(index, f)

	elevation, err := lengthProp(f.Properties, "elevation", 0, unit)
	if err != nil {
		return err
	}
	thickness, err := lengthProp(f.Properties, "thickness", 0, unit)
	if err != nil {
		return err
	}

	if cat == CategoryFloor {
		fp, err := floorFootprint(f.Geometry)
		if err != nil {
			return fmt.Errorf("floor %s: %w", id, err)
		}
		fp = scaleMultiPolygon(fp, unit)
		if opts.SimplifyTolerance > 0 {
			fp = simplifyFootprint(fp, opts.SimplifyTolerance)
		}
		floor := &Floor{id: id, Elevation: elevation, Thickness: thickness, Footprint: fp}
		if _, dup := d.byID[id]; dup {
			monitoring.Logf("duplicate floor id %s at feature %d", id, index)
		} else {
			d.byID[id] = floor
		}
		d.floors = append(d.floors, floor)
		return nil
	}

	height, err := lengthProp(f.Properties, "height", 0, unit)
	if err != nil {
		return err
	}
	switch f.Geometry.(type) {
	case orb.LineString, orb.MultiLineString, orb.Polygon, orb.MultiPolygon:
	default:
		return fmt.Errorf("%s %s: %w %s", cat, id, ErrUnsupportedGeometry, geometryType(f.Geometry))
	}
	d.barriers = append(d.barriers, &Barrier{
		id:        id,
		Category:  cat,
		Elevation: elevation,
		Height:    height,
		Thickness: thickness,
		Footprint: scaleBound(f.Geometry.Bound(), unit),
	})
	return nil
}

func floorFootprint(g orb.Geometry) (orb.MultiPolygon, error) {
	switch v := g.(type) {
	case orb.Polygon:
		return orb.MultiPolygon{v}, nil
	case orb.MultiPolygon:
		return v, nil
	}
	return nil, fmt.Errorf("%w %s", ErrUnsupportedGeometry, geometryType(g))
}

func geometryType(g orb.Geometry) string {
	if g == nil {
		return "(none)"
	}
	return g.GeoJSONType()
}

// featureID prefers properties.id, then the feature id, then the index.
func featureID(index int, f *geojson.Feature) string {
	for _, v := range []interface{}{f.Properties["id"], f.ID} {
		switch id := v.(type) {
		case string:
			if id != "" {
				return id
			}
		case float64:
			return strconv.FormatFloat(id, 'f', -1, 64)
		}
	}
	return "feature-" + strconv.Itoa(index)
}

// lengthProp reads an optional numeric property and converts it to metres.
func lengthProp(p geojson.Properties, key string, def float64, unit string) (float64, error) {
	raw, ok := p[key]
	if !ok || raw == nil {
		return def, nil
	}
	v, ok := raw.(float64)
	if !ok {
		return 0, fmt.Errorf("property %s must be a number, got %T", key, raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("property %s must be finite", key)
	}
	return units.ToMetres(v, unit), nil
}

func scaleMultiPolygon(mp orb.MultiPolygon, unit string) orb.MultiPolygon {
	if unit == units.Metres {
		return mp
	}
	out := mp.Clone()
	for _, poly := range out {
		for _, ring := range poly {
			for i, pt := range ring {
				ring[i] = scalePoint(pt, unit)
			}
		}
	}
	return out
}

func scaleBound(b orb.Bound, unit string) orb.Bound {
	return orb.Bound{Min: scalePoint(b.Min, unit), Max: scalePoint(b.Max, unit)}
}

func scalePoint(p orb.Point, unit string) orb.Point {
	return orb.Point{units.ToMetres(p[0], unit), units.ToMetres(p[1], unit)}
}

func simplifyFootprint(mp orb.MultiPolygon, tolerance float64) orb.MultiPolygon {
	s := simplify.DouglasPeucker(tolerance)
	return s.MultiPolygon(mp.Clone())
}
