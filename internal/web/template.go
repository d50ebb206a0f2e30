package web

import (
	"html/template"
	"io"

	"github.com/bearboticsfrc/bear-hub/internal/hub"
)

var indexTmpl = template.Must(template.New("index").Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.HubName}}</title>
<style>
body { font-family: monospace; max-width: 640px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 45%; }
button { font-family: monospace; margin: 2px; padding: 4px 10px; }
.count { font-size: 1.6em; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
.milestone { color: #b8860b; font-weight: bold; }
.swatch { display: inline-block; width: 14px; height: 14px; border: 1px solid #888; vertical-align: middle; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
</style>
</head>
<body>
<h1>{{.HubName}}<span id="live-dot" class="live-dot pending" title="connecting"></span></h1>

<h2>Counts</h2>
<table>
<tr><th>Active</th><td id="active" class="count">{{.ActiveCount}}</td></tr>
<tr><th>Auto</th><td id="auto">{{.AutoCount}}</td></tr>
<tr><th>Inactive</th><td id="inactive">{{.InactiveCount}}</td></tr>
<tr><th>Milestones</th><td id="milestones" class="milestone"></td></tr>
</table>

<h2>Mode</h2>
<p id="mode-buttons">
<button data-mode="fms">fms</button>
<button data-mode="adhoc">adhoc</button>
<button data-mode="robot_teleop">robot_teleop</button>
<button data-mode="robot_practice">robot_practice</button>
</p>
<p>Current: <b id="mode">{{.Mode}}</b></p>

<h2>Connectivity</h2>
<table>
<tr><th>PLC</th><td id="plc"></td></tr>
<tr><th>Telemetry</th><td id="telemetry"></td></tr>
<tr><th>Lighting console</th><td id="lighting"></td></tr>
<tr><th>FMS period</th><td id="period">{{.FMSPeriod}}</td></tr>
<tr><th>Seconds until inactive</th><td id="until-inactive"></td></tr>
</table>

<h2>Outputs</h2>
<table>
<tr><th>Motors</th><td id="motors"></td></tr>
<tr><th>LEDs</th><td><span id="led-swatch" class="swatch"></span> <span id="led-hex"></span></td></tr>
<tr><th>Dropped sensor events</th><td id="dropped">0</td></tr>
</table>

<p>
<button id="btn-reset">reset counts</button>
<button id="btn-motors">toggle motors</button>
<button id="btn-sim">toggle simulator</button>
<button id="btn-ball">simulate ball</button>
</p>
<p id="error" style="color:red"></p>

<p><a href="/api/status">JSON</a></p>
<script>
(function() {
  var dot = document.getElementById("live-dot");
  var errEl = document.getElementById("error");

  function setDot(cls, title) {
    dot.className = "live-dot " + cls;
    dot.title = title;
  }

  function conn(el, ok) {
    el.textContent = ok ? "connected" : "disconnected";
    el.className = ok ? "connected" : "disconnected";
  }

  function apply(s) {
    document.getElementById("active").textContent = s.active_count;
    document.getElementById("auto").textContent = s.auto_count;
    document.getElementById("inactive").textContent = s.inactive_count;
    document.getElementById("milestones").textContent = (s.milestones_fired || []).join(", ");
    document.getElementById("mode").textContent = s.mode;
    conn(document.getElementById("plc"), s.plc_connected);
    conn(document.getElementById("telemetry"), s.telemetry_connected);
    conn(document.getElementById("lighting"), s.lighting_source_active);
    document.getElementById("period").textContent = s.fms_period;
    document.getElementById("until-inactive").textContent = s.seconds_until_inactive;
    document.getElementById("motors").textContent = s.motors_running ? "running" : "stopped";
    document.getElementById("led-swatch").style.background = s.led_color;
    document.getElementById("led-hex").textContent = s.led_color;
    document.getElementById("dropped").textContent = s.balls_dropped;
    document.getElementById("btn-sim").textContent =
      s.simulator_enabled ? "disable simulator" : "enable simulator";
  }

  function post(url, body) {
    errEl.textContent = "";
    fetch(url, { method: "POST", body: body ? JSON.stringify(body) : null })
      .then(function(r) {
        if (!r.ok) { return r.text().then(function(t) { errEl.textContent = t; }); }
      })
      .catch(function(e) { errEl.textContent = e; });
  }

  document.getElementById("mode-buttons").addEventListener("click", function(e) {
    if (e.target.dataset.mode) { post("/api/mode", { mode: e.target.dataset.mode }); }
  });
  document.getElementById("btn-reset").onclick = function() { post("/api/counts/reset"); };
  document.getElementById("btn-motors").onclick = function() { post("/api/motors/toggle"); };
  document.getElementById("btn-sim").onclick = function() { post("/api/simulate/toggle"); };
  document.getElementById("btn-ball").onclick = function() { post("/api/simulate/ball"); };

  function connect() {
    var proto = location.protocol === "https:" ? "wss://" : "ws://";
    var ws = new WebSocket(proto + location.host + "/api/ws");
    ws.onopen = function() { setDot("ok", "live"); };
    ws.onclose = function() {
      setDot("err", "disconnected");
      setTimeout(connect, 2000);
    };
    ws.onmessage = function(ev) {
      try {
        var msg = JSON.parse(ev.data);
        if (msg.type === "state") { apply(msg.data); }
      } catch (e) {}
    };
  }
  connect();
})();
</script>
</body>
</html>
`

func renderIndex(w io.Writer, snap hub.Snapshot) {
	indexTmpl.Execute(w, snap)
}
