package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/coachboard/internal/adapters/http/api"
	service "github.com/okian/coachboard/internal/app"
	"github.com/okian/coachboard/pkg/metrics"
	"github.com/smartystreets/goconvey/convey"
)

var refTime = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func newMux(opts ...api.Option) (*http.ServeMux, *service.Service) {
	svc := service.New(service.WithClock(func() time.Time { return refTime }))
	convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
	mux := http.NewServeMux()
	api.NewServer(svc, opts...).Register(context.Background(), mux)
	return mux, svc
}

func do(mux http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeBody(w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	convey.So(json.Unmarshal(w.Body.Bytes(), &out), convey.ShouldBeNil)
	return out
}

const injuryBody = `{"athlete_id":7,"date_reported":"2025-03-10","area":"Left hamstring","severity":9,"stage":"acute"}`

func TestEvaluateRoutes(t *testing.T) {
	convey.Convey("Given an API server", t, func() {
		mux, _ := newMux()

		convey.Convey("When an injury form is evaluated", func() {
			w := do(mux, http.MethodPost, "/api/injuries/evaluate", injuryBody)

			convey.Convey("Then the scored result and plan are returned", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "application/json; charset=utf-8")
				out := decodeBody(w)
				m := out["result"].(map[string]any)["metrics"].(map[string]any)
				convey.So(m["riskScore"], convey.ShouldEqual, 9.0)
				convey.So(m["riskBand"], convey.ShouldEqual, "High")
				convey.So(m["daysSince"], convey.ShouldEqual, 4.0)
				recs := out["recommendations"].(map[string]any)
				convey.So(recs["badges"], convey.ShouldResemble, []any{"High"})
				convey.So(len(recs["plan"].([]any)), convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When a backend injury row is evaluated", func() {
			w := do(mux, http.MethodPost, "/api/injuries/evaluate-record",
				`{"athlete_id":12,"date_reported":"2025-03-01","area":"Right ankle","severity":"Severe","status":"Recovering"}`)

			convey.Convey("Then labels are mapped before scoring", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				res := decodeBody(w)["result"].(map[string]any)
				convey.So(res["metrics"].(map[string]any)["riskScore"], convey.ShouldEqual, 4.8)
				convey.So(res["normalized"].(map[string]any)["side"], convey.ShouldEqual, "Right")
			})
		})

		convey.Convey("When an assessment is evaluated", func() {
			w := do(mux, http.MethodPost, "/api/assessments/evaluate",
				`{"athlete_id":"a1","weight":"100","cmf_left":"600","cmf_right":650,"cmp_left":650,"cmp_right":600}`)

			convey.Convey("Then the metrics and persisted record are returned", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				out := decodeBody(w)
				convey.So(out["result"].(map[string]any)["metrics"].(map[string]any)["target"], convey.ShouldEqual, 668.0)
				convey.So(out["record"], convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When a movement screen is evaluated", func() {
			w := do(mux, http.MethodPost, "/api/movements/evaluate",
				`{"athlete_id":"m1","tests":{"Squat":{"Knee valgus":true,"Heels rise":false}}}`)

			convey.Convey("Then failures are tallied", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				m := decodeBody(w)["result"].(map[string]any)["metrics"].(map[string]any)
				convey.So(m["totalFails"], convey.ShouldEqual, 1.0)
			})
		})

		convey.Convey("When the body is not JSON", func() {
			w := do(mux, http.MethodPost, "/api/injuries/evaluate", `{"severity":`)

			convey.Convey("Then 400 with a bad_request code is returned", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusBadRequest)
				convey.So(decodeBody(w)["code"], convey.ShouldEqual, "bad_request")
			})
		})

		convey.Convey("When two JSON documents are sent", func() {
			w := do(mux, http.MethodPost, "/api/injuries/evaluate", `{} {}`)
			convey.So(w.Code, convey.ShouldEqual, http.StatusBadRequest)
		})

		convey.Convey("When an evaluation route is called with GET", func() {
			w := do(mux, http.MethodGet, "/api/injuries/evaluate", "")
			convey.So(w.Code, convey.ShouldEqual, http.StatusMethodNotAllowed)
		})
	})

	convey.Convey("Given a small body cap", t, func() {
		mux, _ := newMux(api.WithMaxBodyBytes(16))
		w := do(mux, http.MethodPost, "/api/injuries/evaluate", injuryBody)

		convey.So(w.Code, convey.ShouldEqual, http.StatusRequestEntityTooLarge)
		convey.So(decodeBody(w)["code"], convey.ShouldEqual, "too_large")
	})
}

func TestSubmitAndQuery(t *testing.T) {
	convey.Convey("Given an API server", t, func() {
		mux, svc := newMux()

		convey.Convey("When the same injury is submitted twice with one key", func() {
			first := do(mux, http.MethodPost, "/api/injuries", injuryBody, api.IdempotencyHeader, "k-1")
			second := do(mux, http.MethodPost, "/api/injuries", injuryBody, api.IdempotencyHeader, "k-1")

			convey.Convey("Then the first is created and the second acknowledged", func() {
				convey.So(first.Code, convey.ShouldEqual, http.StatusCreated)
				convey.So(second.Code, convey.ShouldEqual, http.StatusOK)

				a, b := decodeBody(first), decodeBody(second)
				convey.So(a["duplicate"], convey.ShouldEqual, false)
				convey.So(b["duplicate"], convey.ShouldEqual, true)
				convey.So(b["record"].(map[string]any)["id"], convey.ShouldEqual, a["record"].(map[string]any)["id"])
				convey.So(svc.GetStats()["records"].(map[string]int)["injury"], convey.ShouldEqual, 1)
			})

			convey.Convey("And the athlete history lists it", func() {
				w := do(mux, http.MethodGet, "/api/athletes/7/injuries", "")
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				out := decodeBody(w)
				convey.So(out["athleteId"], convey.ShouldEqual, "7")
				convey.So(len(out["records"].([]any)), convey.ShouldEqual, 1)
			})

			convey.Convey("And the overview counts it as a current injury", func() {
				w := do(mux, http.MethodGet, "/api/dashboard/overview", "")
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				out := decodeBody(w)
				convey.So(out["activeInjuries"], convey.ShouldEqual, 1.0)
				convey.So(out["injuredAthletes"], convey.ShouldResemble, []any{"7"})
				convey.So(out["meanRiskScore"], convey.ShouldEqual, 9.0)
			})
		})

		convey.Convey("When submissions carry no key", func() {
			a := do(mux, http.MethodPost, "/api/assessments", `{"athlete_id":"a1","weight":100}`)
			b := do(mux, http.MethodPost, "/api/assessments", `{"athlete_id":"a1","weight":100}`)

			convey.Convey("Then each one is stored", func() {
				convey.So(a.Code, convey.ShouldEqual, http.StatusCreated)
				convey.So(b.Code, convey.ShouldEqual, http.StatusCreated)
				w := do(mux, http.MethodGet, "/api/athletes/a1/assessment", "")
				convey.So(len(decodeBody(w)["records"].([]any)), convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When a movement is submitted", func() {
			w := do(mux, http.MethodPost, "/api/movements", `{"athlete_id":"m1","tests":{}}`)
			convey.So(w.Code, convey.ShouldEqual, http.StatusCreated)
		})

		convey.Convey("When an athlete has no records", func() {
			w := do(mux, http.MethodGet, "/api/athletes/nobody/movements", "")

			convey.Convey("Then an empty list is returned", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(decodeBody(w)["records"], convey.ShouldResemble, []any{})
			})
		})

		convey.Convey("When the kind is unknown", func() {
			w := do(mux, http.MethodGet, "/api/athletes/7/widgets", "")

			convey.Convey("Then 404 is returned", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusNotFound)
				convey.So(decodeBody(w)["code"], convey.ShouldEqual, "not_found")
			})
		})
	})
}

func TestOperationalRoutes(t *testing.T) {
	convey.Convey("Given a rate limit of one request", t, func() {
		h, err := metrics.Default().Handler()
		convey.So(err, convey.ShouldBeNil)
		mux, _ := newMux(api.WithRateLimit(0.001, 1), api.WithMetricsHandler(h))

		first := do(mux, http.MethodPost, "/api/injuries/evaluate", injuryBody)
		second := do(mux, http.MethodPost, "/api/injuries/evaluate", injuryBody)

		convey.Convey("Then the second API request is rejected", func() {
			convey.So(first.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(second.Code, convey.ShouldEqual, http.StatusTooManyRequests)
			convey.So(second.Header().Get("Retry-After"), convey.ShouldEqual, "1")
		})

		convey.Convey("And operational routes are not limited", func() {
			convey.So(do(mux, http.MethodGet, "/healthz", "").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(do(mux, http.MethodGet, "/healthz", "").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(do(mux, http.MethodGet, "/stats", "").Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("And request metrics are exposed", func() {
			w := do(mux, http.MethodGet, "/metrics", "")
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "coachboard_api_http_requests_total")
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "coachboard_api_rate_limited_total")
		})
	})

	convey.Convey("Given a service that has not started", t, func() {
		svc := service.New()
		mux := http.NewServeMux()
		api.NewServer(svc).Register(context.Background(), mux)

		w := do(mux, http.MethodGet, "/healthz", "")
		convey.So(w.Code, convey.ShouldEqual, http.StatusServiceUnavailable)
		convey.So(decodeBody(w)["status"], convey.ShouldEqual, "starting")
	})

	convey.Convey("Given a nil mux", t, func() {
		convey.So(func() { api.NewServer(service.New()).Register(context.Background(), nil) }, convey.ShouldPanic)
	})
}
