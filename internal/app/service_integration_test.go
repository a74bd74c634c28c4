package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/okian/parkstats/internal/adapters/geodesic"
	"github.com/okian/parkstats/internal/adapters/source"
	service "github.com/okian/parkstats/internal/app"
	"github.com/okian/parkstats/internal/domain/records"
	. "github.com/smartystreets/goconvey/convey"
)

const resultsCSV = `Event,Run Date,Run Number,Pos,Time
Bushy Park,06/01/2024,1000,10,25:00
Bushy Park,13/01/2024,1001,12,26:30
Fulham Palace,20/01/2024,12,3,24:10
Bushy Park,17/02/2024,1005,9,1:01:00
`

// Land's End to John o' Groats, roughly 968 km along the great circle.
const lejogGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test">
  <trk><name>LEJOG</name><trkseg>
    <trkpt lat="50.0657" lon="-5.7132"></trkpt>
    <trkpt lat="58.6373" lon="-3.0689"></trkpt>
  </trkseg></trk>
</gpx>
`

func writeFile(dir, name, content string) string {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		panic(err)
	}
	return path
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given result and route files on disk", t, func() {
		dir := t.TempDir()
		resultsPath := writeFile(dir, "results.csv", resultsCSV)
		routePath := writeFile(dir, "lejog.gpx", lejogGPX)
		ctx := context.Background()

		Convey("When a kilometer service loads both", func() {
			svc, _ := newService(service.WithRouteUnit(geodesic.Kilometers))
			err := svc.LoadFiles(ctx, resultsPath, routePath)

			Convey("Then the status should describe the dataset", func() {
				So(err, ShouldBeNil)
				st := svc.Status()
				So(st.Loaded, ShouldBeTrue)
				So(st.Records, ShouldEqual, 4)
				So(st.RoutePoints, ShouldEqual, 2)
				So(st.LoadedAt.IsZero(), ShouldBeFalse)
			})

			Convey("And the summary should add the parsed times", func() {
				sum, err := svc.Summary(ctx, geodesic.Kilometers)
				So(err, ShouldBeNil)
				So(sum.TotalTime.Hours, ShouldEqual, 2)
				So(sum.TotalTime.Minutes, ShouldEqual, 16)
				So(sum.TotalTime.Seconds, ShouldEqual, 40)
				So(sum.TotalTimeText, ShouldEqual, "2h 16m 40s")
			})

			Convey("And the route should be cut 20 km from the start", func() {
				proj, err := svc.Route(ctx)
				So(err, ShouldBeNil)
				So(proj.RouteLength, ShouldAlmostEqual, 968, 5)
				So(proj.Reached, ShouldBeTrue)
				So(proj.Points, ShouldHaveLength, 2)
				So(proj.Points[1].Lat, ShouldBeGreaterThan, 50.0657)
				So(proj.Points[1].Lat, ShouldBeLessThan, 50.5)
				So(proj.Progress, ShouldAlmostEqual, 20/proj.RouteLength, 1e-9)
			})
		})

		Convey("When a service loads results without a route", func() {
			svc, _ := newService()
			err := svc.LoadFiles(ctx, resultsPath, "")

			Convey("Then statistics should work and the route should not", func() {
				So(err, ShouldBeNil)
				_, err = svc.Summary(ctx, geodesic.Miles)
				So(err, ShouldBeNil)
				_, err = svc.Route(ctx)
				So(errors.Is(err, service.ErrNoRoute), ShouldBeTrue)
			})
		})

		Convey("When the results file is missing", func() {
			svc, _ := newService()
			err := svc.LoadFiles(ctx, filepath.Join(dir, "nope.csv"), "")

			Convey("Then loading should fail with a read error", func() {
				So(errors.Is(err, source.ErrReadResults), ShouldBeTrue)
				So(svc.Status().Loaded, ShouldBeFalse)
			})
		})

		Convey("When the results file is missing a column", func() {
			bad := writeFile(dir, "bad.csv", "Event,Run Date,Time\nBushy Park,06/01/2024,25:00\n")
			svc, _ := newService()
			err := svc.LoadFiles(ctx, bad, "")

			Convey("Then loading should fail with a schema error", func() {
				So(errors.Is(err, records.ErrSchema), ShouldBeTrue)
			})
		})

		Convey("When readers race a reload", func() {
			svc, _ := newService(service.WithRouteUnit(geodesic.Kilometers))
			So(svc.LoadFiles(ctx, resultsPath, routePath), ShouldBeNil)

			var wg sync.WaitGroup
			errs := make(chan error, 40)
			for range 20 {
				wg.Add(2)
				go func() {
					defer wg.Done()
					_, err := svc.Summary(ctx, geodesic.Kilometers)
					errs <- err
				}()
				go func() {
					defer wg.Done()
					errs <- svc.LoadFiles(ctx, resultsPath, routePath)
				}()
			}
			wg.Wait()
			close(errs)

			Convey("Then every call should succeed", func() {
				for err := range errs {
					So(err, ShouldBeNil)
				}
			})
		})
	})
}
