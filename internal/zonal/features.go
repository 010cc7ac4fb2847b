package zonal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"
)

// Feature is one input geometry with its identity and properties.
type Feature struct {
	ID         interface{}
	Geometry   orb.Geometry
	Properties geojson.Properties
}

// ReadFeatures parses feature input into an ordered feature sequence. It
// accepts a GeoJSON FeatureCollection, a single Feature, a bare geometry,
// or a WKT geometry string. Anything else is a configuration error.
func ReadFeatures(data []byte) ([]Feature, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty feature input", ErrConfig)
	}

	if trimmed[0] != '{' {
		geom, err := wkt.Unmarshal(strings.TrimSpace(string(trimmed)))
		if err != nil {
			return nil, fmt.Errorf("%w: input is neither GeoJSON nor WKT", ErrConfig)
		}
		return []Feature{{Geometry: geom}}, nil
	}

	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(trimmed, &head); err != nil {
		return nil, fmt.Errorf("%w: malformed JSON feature input: %v", ErrConfig, err)
	}

	switch head.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(trimmed)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfig, err)
		}
		features := make([]Feature, 0, len(fc.Features))
		for _, f := range fc.Features {
			features = append(features, fromGeoJSON(f))
		}
		return features, nil
	case "Feature":
		f, err := geojson.UnmarshalFeature(trimmed)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfig, err)
		}
		return []Feature{fromGeoJSON(f)}, nil
	case "Point", "MultiPoint", "LineString", "MultiLineString",
		"Polygon", "MultiPolygon", "GeometryCollection":
		g, err := geojson.UnmarshalGeometry(trimmed)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfig, err)
		}
		return []Feature{{Geometry: g.Geometry()}}, nil
	default:
		return nil, fmt.Errorf("%w: unrecognized feature input type %q", ErrConfig, head.Type)
	}
}

func fromGeoJSON(f *geojson.Feature) Feature {
	return Feature{ID: f.ID, Geometry: f.Geometry, Properties: f.Properties}
}

// AsFeature merges a computed result into a GeoJSON feature carrying the
// input geometry, identity and original properties.
func AsFeature(ft Feature, res Result) *geojson.Feature {
	out := geojson.NewFeature(ft.Geometry)
	out.ID = ft.ID
	out.Properties = make(geojson.Properties, len(ft.Properties)+len(res))
	for k, v := range ft.Properties {
		out.Properties[k] = v
	}
	for k, v := range res {
		out.Properties[k] = v
	}
	return out
}
