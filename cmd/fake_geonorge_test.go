package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sells-group/placelookup/internal/config"
)

const (
	fakeElevation = `{"punkter":[{"x":8.3124,"y":61.6363,"z":412.3,"datakilde":"dtm1"}]}`
	fakeKommune   = `{"fylkesnavn":"Innlandet","fylkesnummer":"34","kommunenavn":"Lom","kommunenummer":"3434"}`
	fakeNear      = `{"navn":[{
		"stedsnummer":1001,
		"navneobjekttype":"Tettsted",
		"representasjonspunkt":{"øst":8.312,"nord":61.637},
		"stedsnavn":[{"skrivemåte":"Fossbergom","skrivemåtestatus":"vedtatt","navnestatus":"hovednavn","språk":"nor"}]
	}]}`
	fakeSearch = `{"navn":[
		{"stedsnummer":2001,"navneobjekttype":"By","representasjonspunkt":{"øst":10.75,"nord":59.91},
		 "fylker":[{"fylkesnavn":"Oslo"}],"kommuner":[{"kommunenavn":"Oslo"}],
		 "stedsnavn":[{"skrivemåte":"Oslo"}]},
		{"stedsnummer":2002,"navneobjekttype":"Gard","representasjonspunkt":{"øst":11.0,"nord":60.1},
		 "stedsnavn":[{"skrivemåte":"Oslo gard"}]}
	]}`
)

// newFakeGeonorge serves canned replies for every upstream service under a
// per-service path prefix.
func newFakeGeonorge(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	reply := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(body))
		}
	}
	mux.HandleFunc("/hoydedata/punkt", reply(fakeElevation))
	mux.HandleFunc("/kommuneinfo/punkt", reply(fakeKommune))
	mux.HandleFunc("/stedsnavn/punkt", reply(fakeNear))
	mux.HandleFunc("/stedsnavn/sted", reply(fakeSearch))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// newDownGeonorge answers every request with 503.
func newDownGeonorge(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(baseURL string) *config.Config {
	c := &config.Config{}
	c.App.Env = "test"
	c.Server.Port = 8080
	c.Server.CORSOrigins = []string{"*"}
	c.Geonorge = config.GeonorgeConfig{
		EPSG:             "4258",
		TimeoutSecs:      5,
		UserAgent:        "placelookup-test",
		ElevationBackend: config.ElevationHoydedata,
		PlacesBackend:    config.PlacesStedsnavn,
		ElevationURL:     baseURL + "/hoydedata",
		PlacesURL:        baseURL + "/stedsnavn",
		MunicipalityURL:  baseURL + "/kommuneinfo",
		WPSURL:           baseURL + "/wps",
		SSRURL:           baseURL + "/ssr",
		SSRRadiusDeg:     0.01,
	}
	c.Search = config.SearchConfig{DefaultLimit: 10, EnrichConcurrency: 4}
	return c
}
