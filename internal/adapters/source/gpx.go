package source

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"

	"github.com/okian/parkstats/internal/domain/model"
)

type gpxPoint struct {
	Lat float64 `xml:"lat,attr"`
	Lon float64 `xml:"lon,attr"`
}

type gpxDoc struct {
	Tracks []struct {
		Segments []struct {
			Points []gpxPoint `xml:"trkpt"`
		} `xml:"trkseg"`
	} `xml:"trk"`
	Routes []struct {
		Points []gpxPoint `xml:"rtept"`
	} `xml:"rte"`
}

// LoadGPX reads every track point of a GPX document, concatenating tracks
// and their segments in file order. Files without tracks fall back to their
// route points.
func LoadGPX(r io.Reader) (model.Route, error) {
	var doc gpxDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadRoute, err)
	}

	var out model.Route
	for _, trk := range doc.Tracks {
		for _, seg := range trk.Segments {
			for _, p := range seg.Points {
				out = append(out, model.RoutePoint{Lat: p.Lat, Lon: p.Lon})
			}
		}
	}
	if len(out) > 0 {
		return out, nil
	}
	for _, rte := range doc.Routes {
		for _, p := range rte.Points {
			out = append(out, model.RoutePoint{Lat: p.Lat, Lon: p.Lon})
		}
	}
	return out, nil
}

// LoadGPXFile opens path and reads it with LoadGPX.
func LoadGPXFile(path string) (model.Route, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadRoute, err)
	}
	defer func() { _ = f.Close() }()
	return LoadGPX(f)
}
