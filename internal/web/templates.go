package web

const dashboardTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Data Visualization</title>
  <style>
    body { font-family: system-ui, sans-serif; margin: 2rem; color: #222; }
    .center-container { text-align: center; }
    .labelStyle { margin-right: .5rem; font-weight: 600; }
    .dropdown { padding: .3rem .5rem; }
    .table-container { display: flex; justify-content: center; margin: 1.5rem 0; }
    .data-table { border-collapse: collapse; min-width: 24rem; }
    .data-table th, .data-table td { border: 1px solid #ccc; padding: .35rem .8rem; text-align: left; }
    .data-table th { background: #f3f3f3; }
    .line-chart-container { max-width: 960px; margin: 0 auto; }
    .line-chart-container iframe { width: 100%; height: 460px; border: 0; }
    .error { color: #b00020; text-align: center; }
  </style>
</head>
<body>
  <div class="center-container">
    <h1>Data Visualization</h1>
    <form id="selector" onsubmit="return false">
      <label class="labelStyle" for="metric">Select metric to view the line graph:</label>
      <select class="dropdown" id="metric" name="metric">
        <option value="" disabled{{if not .Offered}} selected{{end}}>{{.Placeholder}}</option>
        {{- range .Options}}
        <option value="{{.}}"{{if eq . $.Selected}} selected{{end}}>{{.}}</option>
        {{- end}}
      </select>
      <button type="button" id="clear">Clear</button>
    </form>
    {{- if .Error}}
    <p class="error">fetch failed: {{.Error}}</p>
    {{- end}}
  </div>

  <div class="table-container">
    <table class="data-table">
      <thead>
        <tr><th>Metric</th><th>Value</th></tr>
      </thead>
      <tbody>
        {{- range .Rows}}
        <tr><td>{{.Metric}}</td><td>{{.FormatValue}}</td></tr>
        {{- end}}
      </tbody>
    </table>
  </div>

  {{- range .Charts}}
  <div class="line-chart-container" data-metric="{{.Metric}}"{{if .Hidden}} hidden{{end}}>
    <h2>{{.Title}}</h2>
    <iframe title="{{.Title}}" srcdoc="{{.HTML}}"></iframe>
    {{- if .PNG}}
    <p><a href="{{.PNG}}" download="{{.Metric}}.png">Download PNG</a></p>
    {{- end}}
  </div>
  {{- end}}

  <script>
    (function () {
      var select = document.getElementById("metric");
      var charts = document.querySelectorAll(".line-chart-container");
      function show(metric) {
        charts.forEach(function (c) { c.hidden = c.dataset.metric !== metric; });
        var url = new URL(window.location.href);
        if (metric) { url.searchParams.set("metric", metric); } else { url.searchParams.delete("metric"); }
        window.history.replaceState(null, "", url);
      }
      select.addEventListener("change", function () { show(select.value); });
      document.getElementById("clear").addEventListener("click", function () {
        select.selectedIndex = 0;
        show("");
      });
    })();
  </script>
</body>
</html>
`
