package zonal

import (
	"errors"
	"testing"

	"github.com/paulmach/orb"
)

const featureCollectionJSON = `{
	"type": "FeatureCollection",
	"features": [
		{"type": "Feature", "id": 7,
		 "properties": {"name": "alpha"},
		 "geometry": {"type": "Polygon", "coordinates": [[[0,0],[2,0],[2,2],[0,2],[0,0]]]}},
		{"type": "Feature",
		 "properties": null,
		 "geometry": {"type": "Point", "coordinates": [1.5, 1.5]}}
	]
}`

func TestReadFeatures(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"feature collection", featureCollectionJSON, 2},
		{"single feature", `{"type": "Feature", "properties": {}, "geometry": {"type": "Point", "coordinates": [1, 2]}}`, 1},
		{"bare geometry", `{"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,0]]]}`, 1},
		{"wkt polygon", "POLYGON ((0 0, 2 0, 2 2, 0 2, 0 0))", 1},
		{"wkt point", "POINT (1.5 1.5)", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			features, err := ReadFeatures([]byte(tt.input))
			if err != nil {
				t.Fatalf("ReadFeatures failed: %v", err)
			}
			if len(features) != tt.want {
				t.Fatalf("got %d features, want %d", len(features), tt.want)
			}
			for i, ft := range features {
				if ft.Geometry == nil {
					t.Errorf("feature %d has nil geometry", i)
				}
			}
		})
	}
}

func TestReadFeaturesPreservesIdentity(t *testing.T) {
	features, err := ReadFeatures([]byte(featureCollectionJSON))
	if err != nil {
		t.Fatalf("ReadFeatures failed: %v", err)
	}
	if features[0].ID != float64(7) {
		t.Errorf("ID = %v (%T), want 7", features[0].ID, features[0].ID)
	}
	if features[0].Properties["name"] != "alpha" {
		t.Errorf("properties not preserved: %v", features[0].Properties)
	}
	if _, ok := features[0].Geometry.(orb.Polygon); !ok {
		t.Errorf("geometry type = %T, want orb.Polygon", features[0].Geometry)
	}
	if _, ok := features[1].Geometry.(orb.Point); !ok {
		t.Errorf("geometry type = %T, want orb.Point", features[1].Geometry)
	}
}

func TestReadFeaturesRejectsGarbage(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace", "   \n\t"},
		{"not wkt", "this is not a geometry"},
		{"truncated json", `{"type": "FeatureCollection", "features": [`},
		{"unknown type", `{"type": "Raster", "values": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadFeatures([]byte(tt.input)); !errors.Is(err, ErrConfig) {
				t.Errorf("got %v, want ErrConfig", err)
			}
		})
	}
}

func TestAsFeatureMergesProperties(t *testing.T) {
	features, err := ReadFeatures([]byte(featureCollectionJSON))
	if err != nil {
		t.Fatalf("ReadFeatures failed: %v", err)
	}

	out := AsFeature(features[0], Result{"count": 4, "mean": 12.5})

	if out.ID != float64(7) {
		t.Errorf("ID = %v, want 7", out.ID)
	}
	if out.Properties["name"] != "alpha" {
		t.Errorf("original property lost: %v", out.Properties)
	}
	if out.Properties["count"] != 4 || out.Properties["mean"] != 12.5 {
		t.Errorf("statistics not merged: %v", out.Properties)
	}
	if out.Geometry == nil {
		t.Error("geometry lost")
	}
}
