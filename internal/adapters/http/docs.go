package http

import (
	"os"

	"github.com/gofiber/fiber/v2"
)

const swaggerUIHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>demfetch API</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
  <style>html{box-sizing:border-box}*,*::before,*::after{box-sizing:inherit}body{margin:0;background:#fafafa}</style>
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({
      url: '/docs/openapi.yaml',
      dom_id: '#swagger-ui',
      deepLinking: true,
      presets: [SwaggerUIBundle.presets.apis, SwaggerUIBundle.SwaggerUIStandalonePreset],
      layout: 'BaseLayout',
    });
  </script>
</body>
</html>`

// mapPageHTML is the interactive selection page: an OpenStreetMap view with a
// rectangle-only draw tool, a manual coordinate form, and a download button
// that stays disabled until an area is selected.
const mapPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>DEM Downloader</title>
  <link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
  <link rel="stylesheet" href="https://unpkg.com/leaflet-draw@1.0.4/dist/leaflet.draw.css">
  <style>
    body{margin:0;font-family:sans-serif;display:flex;height:100vh}
    #map{flex:1}
    #panel{width:280px;padding:12px;overflow:auto}
    #panel label{display:block;margin:6px 0}
    #panel input{width:100%}
    #status{margin-top:12px;font-size:13px;white-space:pre-wrap}
    button{margin-top:8px;width:100%}
  </style>
</head>
<body>
  <div id="map"></div>
  <div id="panel">
    <h3>Area</h3>
    <form id="manual">
      <label>South <input name="south"></label>
      <label>North <input name="north"></label>
      <label>West <input name="west"></label>
      <label>East <input name="east"></label>
      <button type="submit">Use coordinates</button>
    </form>
    <button id="download" disabled>Download DEM</button>
    <button id="kml" disabled>Export KML</button>
    <div id="status">Draw a rectangle or enter coordinates.</div>
  </div>
  <script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
  <script src="https://unpkg.com/leaflet-draw@1.0.4/dist/leaflet.draw.js"></script>
  <script>
    const map = L.map('map').setView([40.7, -73.9], 6);
    L.tileLayer('https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png', {
      attribution: '&copy; OpenStreetMap contributors'
    }).addTo(map);

    const drawn = new L.FeatureGroup().addTo(map);
    map.addControl(new L.Control.Draw({
      draw: {polyline: false, polygon: false, circle: false, marker: false, circlemarker: false, rectangle: true},
      edit: {featureGroup: drawn, edit: false, remove: false}
    }));

    const status = document.getElementById('status');
    const dl = document.getElementById('download');
    const kml = document.getElementById('kml');

    function show(sel) {
      const d = sel.display;
      status.textContent = 'Selected (' + sel.source + '): S=' + d.south + ', N=' + d.north +
        ', W=' + d.west + ', E=' + d.east + '\n' + Math.round(sel.area_km2) + ' km²';
      dl.disabled = false;
      kml.disabled = false;
      drawn.clearLayers();
      L.rectangle([[sel.box.south, sel.box.west], [sel.box.north, sel.box.east]]).addTo(drawn);
    }

    async function send(method, url, body) {
      const res = await fetch(url, {
        method: method,
        headers: {'Content-Type': 'application/json'},
        body: body === undefined ? undefined : JSON.stringify(body)
      });
      const data = await res.json().catch(() => ({}));
      if (!res.ok) throw new Error(data.message || res.statusText);
      return data;
    }

    map.on(L.Draw.Event.CREATED, async (e) => {
      try { show(await send('POST', '/v1/selection/drawn', e.layer.toGeoJSON())); }
      catch (err) { status.textContent = 'Error: ' + err.message; }
    });

    document.getElementById('manual').addEventListener('submit', async (e) => {
      e.preventDefault();
      const f = new FormData(e.target);
      try { show(await send('POST', '/v1/selection/manual', Object.fromEntries(f.entries()))); }
      catch (err) { status.textContent = 'Error: ' + err.message; }
    });

    dl.addEventListener('click', async () => {
      dl.disabled = true;
      status.textContent = 'Downloading DEM...';
      try {
        const r = await send('POST', '/v1/downloads');
        status.textContent = 'DEM saved to ' + r.path + ' (' + r.size_kb.toFixed(1) + ' KB)';
      } catch (err) {
        status.textContent = 'Download failed: ' + err.message;
      } finally {
        dl.disabled = false;
      }
    });

    kml.addEventListener('click', () => { window.location = '/v1/selection.kml'; });

    send('GET', '/v1/selection').then(show).catch(() => {});
  </script>
</body>
</html>`

// SetupDocs registers Swagger UI at /docs, the raw OpenAPI spec at
// /docs/openapi.yaml and the map page at /.
func SetupDocs(app *fiber.App) {
	app.Get("/", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.SendString(mapPageHTML)
	})

	app.Get("/docs", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.SendString(swaggerUIHTML)
	})

	app.Get("/docs/openapi.yaml", func(c *fiber.Ctx) error {
		data, err := os.ReadFile("api/openapi.yaml")
		if err != nil {
			return errNotFound(c, "openapi.yaml not found")
		}
		c.Set(fiber.HeaderContentType, "application/yaml")
		return c.Send(data)
	})
}
