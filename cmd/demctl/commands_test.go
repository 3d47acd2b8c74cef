package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(fs afero.Fs, stdin string) (*app, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return &app{out: &out, errOut: &errOut, in: strings.NewReader(stdin), fs: fs}, &out, &errOut
}

func run(a *app, args ...string) error {
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(a.out)
	root.SetErr(a.errOut)
	return root.Execute()
}

const rectGeoJSON = `{"type":"FeatureCollection","features":[
  {"type":"Feature","geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}},
  {"type":"Feature","geometry":{"type":"Polygon","coordinates":[[[-74,40],[-73,40],[-73,41],[-74,41],[-74,40]]]}}
]}`

func TestBounds_Manual(t *testing.T) {
	a, out, _ := newTestApp(afero.NewMemMapFs(), "")
	require.NoError(t, run(a, "bounds", "--south", "40", "--north", "41", "--west", "-74", "--east", "-73"))
	assert.Equal(t, "S=40.0000, N=41.0000, W=-74.0000, E=-73.0000\n", out.String())
}

func TestBounds_GeoJSONFileLastFeatureWins(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/area.geojson", []byte(rectGeoJSON), 0o644))

	a, out, _ := newTestApp(fs, "")
	require.NoError(t, run(a, "bounds", "--geojson", "/area.geojson"))
	assert.Equal(t, "S=40.0000, N=41.0000, W=-74.0000, E=-73.0000\n", out.String())
}

func TestBounds_GeoJSONStdin(t *testing.T) {
	a, out, _ := newTestApp(afero.NewMemMapFs(), rectGeoJSON)
	require.NoError(t, run(a, "--json", "bounds", "--geojson", "-"))

	var res struct {
		Success bool
		Data    struct{ South, North, West, East float64 }
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.True(t, res.Success)
	assert.Equal(t, 40.0, res.Data.South)
	assert.Equal(t, -73.0, res.Data.East)
}

func TestBounds_NonNumeric(t *testing.T) {
	a, out, _ := newTestApp(afero.NewMemMapFs(), "")
	err := run(a, "--json", "bounds", "--south", "x", "--north", "41", "--west", "-74", "--east", "-73")
	require.Error(t, err)
	assert.Contains(t, out.String(), `"success":false`)
	assert.Contains(t, out.String(), "non-numeric input")
}

func TestBounds_NoSelector(t *testing.T) {
	a, _, _ := newTestApp(afero.NewMemMapFs(), "")
	assert.Error(t, run(a, "bounds"))
}

func TestBounds_ModalitiesExclusive(t *testing.T) {
	a, _, _ := newTestApp(afero.NewMemMapFs(), "")
	assert.Error(t, run(a, "bounds", "--geojson", "x.json", "--south", "1"))
}

func TestKML(t *testing.T) {
	a, out, _ := newTestApp(afero.NewMemMapFs(), "")
	require.NoError(t, run(a, "kml", "--south", "40", "--north", "41", "--west", "-74", "--east", "-73", "--name", "nyc"))
	assert.Contains(t, out.String(), "<name>nyc</name>")
	assert.Contains(t, out.String(), "<Polygon>")
}

func TestFetch_WritesRaster(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		_, _ = w.Write([]byte("GTIFFDATA"))
	}))
	defer srv.Close()

	t.Setenv("DEMFETCH_DEM_ENDPOINT", srv.URL)
	t.Setenv("OPENTOPOGRAPHY_API_KEY", "secret")

	fs := afero.NewMemMapFs()
	a, out, _ := newTestApp(fs, "")
	require.NoError(t, run(a, "fetch", "--south", "40", "--north", "41", "--west", "-74", "--east", "-73", "--out", "/dem/raster.tif"))

	assert.Equal(t, "demtype=SRTMGL3&south=40.0&north=41.0&west=-74.0&east=-73.0&outputFormat=GTiff&API_Key=secret", query)
	assert.Contains(t, out.String(), "DEM saved to /dem/raster.tif")

	data, err := afero.ReadFile(fs, "/dem/raster.tif")
	require.NoError(t, err)
	assert.Equal(t, "GTIFFDATA", string(data))
}

func TestFetch_MissingCredential(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	t.Setenv("DEMFETCH_DEM_ENDPOINT", srv.URL)
	t.Setenv("OPENTOPOGRAPHY_API_KEY", "")
	t.Setenv("DEMFETCH_API_KEY", "")

	a, _, _ := newTestApp(afero.NewMemMapFs(), "")
	err := run(a, "fetch", "--south", "40", "--north", "41", "--west", "-74", "--east", "-73", "--out", "/dem/raster.tif")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing credential")
	assert.False(t, called)
}

func TestFetch_ConfigErrorJSONEnvelope(t *testing.T) {
	t.Setenv("DEMFETCH_SERVER_PORT", "0")

	a, out, _ := newTestApp(afero.NewMemMapFs(), "")
	err := run(a, "--json", "fetch", "--south", "40", "--north", "41", "--west", "-74", "--east", "-73")
	require.Error(t, err)

	var res struct {
		Success bool
		Error   *string
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.False(t, res.Success)
	require.NotNil(t, res.Error)
	assert.Contains(t, *res.Error, "server.port")
}
