package views

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/quiradon/RPGLive/domain"
)

// PageCounters is the registry as seen by the page handlers. Viewing an
// overlay page creates the counter.
type PageCounters interface {
	GetOrCreate(id string) int64
}

type Views struct {
	counters PageCounters
	wsPath   string
}

func New(c PageCounters, wsPath string) *Views {
	return &Views{counters: c, wsPath: wsPath}
}

type dashboardData struct {
	WSURL string
}

type overlayData struct {
	ID    string
	Count int64
	WSURL string
}

func (v *Views) Dashboard(w http.ResponseWriter, r *http.Request) {
	render(w, dashboardTmpl, dashboardData{WSURL: v.wsURL(r)})
}

func (v *Views) Overlay(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !domain.ValidID(id) {
		http.NotFound(w, r)
		return
	}
	count := v.counters.GetOrCreate(id)
	render(w, overlayTmpl, overlayData{ID: id, Count: count, WSURL: v.wsURL(r)})
}

// wsURL points the page back at the host that served it.
func (v *Views) wsURL(r *http.Request) string {
	scheme := "ws"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "wss"
	}
	return scheme + "://" + r.Host + v.wsPath
}

func render(w http.ResponseWriter, t *template.Template, data any) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		slog.Error("template error", "template", t.Name(), "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

var dashboardTmpl = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html>
  <body>
    <h1>Dashboard</h1>
    <button onclick="syncOverlays()">Sync</button>
    <div id="overlays"></div>
    <script>
      let ws;
      function render(overlays) {
        const root = document.getElementById('overlays');
        root.replaceChildren();
        overlays.forEach(overlay => {
          const row = document.createElement('div');
          const label = document.createElement('span');
          label.textContent = 'Overlay ' + overlay.id + ': ';
          const inc = document.createElement('button');
          inc.textContent = '+';
          inc.onclick = () => changeCount(overlay.id, 1);
          const dec = document.createElement('button');
          dec.textContent = '-';
          dec.onclick = () => changeCount(overlay.id, -1);
          const count = document.createElement('span');
          count.textContent = ' Count: ' + overlay.count;
          row.append(label, inc, dec, count);
          root.appendChild(row);
        });
      }
      function connectWebSocket() {
        ws = new WebSocket({{.WSURL}});
        ws.onmessage = (event) => {
          const data = JSON.parse(event.data);
          if (data.overlays !== undefined) {
            render(data.overlays);
          }
        };
        ws.onclose = () => setTimeout(connectWebSocket, 5000);
      }
      function changeCount(id, delta) {
        ws.send(JSON.stringify({ id, delta }));
      }
      function syncOverlays() {
        ws.send(JSON.stringify({ action: 'sync' }));
      }
      connectWebSocket();
    </script>
  </body>
</html>
`))

var overlayTmpl = template.Must(template.New("overlay").Parse(`<!DOCTYPE html>
<html>
  <body>
    <h1>Overlay {{.ID}}</h1>
    <div>Count: <span id="count">{{.Count}}</span></div>
    <script>
      const overlayId = {{.ID}};
      let ws;
      function connectWebSocket() {
        ws = new WebSocket({{.WSURL}});
        ws.onmessage = (event) => {
          const data = JSON.parse(event.data);
          if (data.id === overlayId && data.count !== undefined) {
            document.getElementById('count').textContent = data.count;
          }
        };
        ws.onclose = () => setTimeout(connectWebSocket, 5000);
      }
      connectWebSocket();
    </script>
  </body>
</html>
`))
