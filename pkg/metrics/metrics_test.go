package metrics_test

import (
	"testing"

	"github.com/okian/quickdraw/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGlobalManager(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording domain events", func() {
			metrics.RecordTokenIssued()
			metrics.RecordTokenConsumed()
			metrics.RecordTokenRejected()
			metrics.RecordTokensSwept(3)
			metrics.UpdateLiveTokens(7)
			metrics.RecordSubmission("accepted")
			metrics.RecordBoardEdit()
			metrics.RecordBoardCreate()
			metrics.RecordBoardPinFailure()
			metrics.RecordHTTPRequest("submit", "POST", "202")
			metrics.RecordHTTPRequestDuration("submit", "POST", 0.012)

			Convey("Then the registry gathers the expected families", func() {
				families, err := metrics.Registry().Gather()
				So(err, ShouldBeNil)

				names := make(map[string]bool, len(families))
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["quickdraw_tokens_issued_total"], ShouldBeTrue)
				So(names["quickdraw_tokens_live"], ShouldBeTrue)
				So(names["quickdraw_submissions_total"], ShouldBeTrue)
				So(names["quickdraw_board_creates_total"], ShouldBeTrue)
				So(names["quickdraw_http_requests_total"], ShouldBeTrue)
			})
		})

		Convey("When sweeping zero tokens", func() {
			Convey("Then recording is a no-op and does not panic", func() {
				So(func() { metrics.RecordTokensSwept(0) }, ShouldNotPanic)
			})
		})
	})
}

func TestNewManager(t *testing.T) {
	Convey("Given a manager on its own registry", t, func() {
		Convey("Then construction with options succeeds", func() {
			// A fresh registry avoids duplicate registration with the
			// package-level manager.
			m := metrics.NewManager(
				metrics.WithNamespace("quickdraw_test"),
				metrics.WithHistogramBuckets([]float64{0.01, 0.1, 1}),
				metrics.WithRegistry(nil), // ignored, keeps default
			)
			So(m, ShouldNotBeNil)
		})
	})
}
