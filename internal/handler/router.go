package handler

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"netseg/internal/metrics"
)

// Router holds everything the routes are served from
type Router struct {
	Designer    *DesignerHandler
	Departments *DepartmentHandler
	Hosts       *HostHandler
	Tests       *TestHandler
	Monitor     *MonitorHandler
	Prefs       *PrefsHandler
	Events      http.Handler
	Metrics     *metrics.Registry
	Logger      *zap.Logger
	Origins     []string
}

// Handler registers every route and wraps the mux in the middleware chain
func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	// Designer canvas
	d := rt.Designer
	mux.HandleFunc("GET /api/designer", d.GetCanvas)
	mux.HandleFunc("GET /api/designer/nodes", d.ListNodes)
	mux.HandleFunc("POST /api/designer/nodes", d.AddNode)
	mux.HandleFunc("GET /api/designer/nodes/{id}", d.GetNode)
	mux.HandleFunc("PUT /api/designer/nodes/{id}", d.UpdateNode)
	mux.HandleFunc("DELETE /api/designer/nodes/{id}", d.DeleteNode)
	mux.HandleFunc("PUT /api/designer/nodes/{id}/position", d.MoveNode)
	mux.HandleFunc("POST /api/designer/connections", d.Connect)
	mux.HandleFunc("DELETE /api/designer/connections", d.Disconnect)
	mux.HandleFunc("POST /api/designer/undo", d.Undo)
	mux.HandleFunc("POST /api/designer/redo", d.Redo)
	mux.HandleFunc("POST /api/designer/validate", d.Validate)
	mux.HandleFunc("POST /api/designer/findings/{id}/fix", d.FixFinding)
	mux.HandleFunc("GET /api/designer/options", d.GetOptions)
	mux.HandleFunc("PUT /api/designer/options", d.SetOptions)
	mux.HandleFunc("POST /api/designer/save", d.Save)
	mux.HandleFunc("GET /api/designer/designs", d.ListDesigns)
	mux.HandleFunc("POST /api/designer/designs/{name}/load", d.LoadDesign)
	mux.HandleFunc("DELETE /api/designer/designs/{name}", d.DeleteDesign)
	mux.HandleFunc("POST /api/designer/deploy", d.Deploy)
	mux.HandleFunc("GET /api/designer/export/{format}", d.Export)
	mux.HandleFunc("POST /api/designer/import/{format}", d.Import)

	// Department zones
	z := rt.Departments
	mux.HandleFunc("GET /api/departments", z.List)
	mux.HandleFunc("GET /api/departments/selected", z.Selected)
	mux.HandleFunc("GET /api/departments/{id}", z.Get)
	mux.HandleFunc("PUT /api/departments/{id}", z.Update)
	mux.HandleFunc("POST /api/departments/{id}/select", z.Select)

	// Virtual hosts
	h := rt.Hosts
	mux.HandleFunc("GET /api/hosts", h.List)
	mux.HandleFunc("POST /api/hosts", h.Create)
	mux.HandleFunc("GET /api/hosts/stats", h.Stats)
	mux.HandleFunc("GET /api/hosts/inventory", h.Inventory)
	mux.HandleFunc("POST /api/hosts/bulk", h.Bulk)
	mux.HandleFunc("GET /api/hosts/{id}", h.Get)
	mux.HandleFunc("PUT /api/hosts/{id}", h.Update)
	mux.HandleFunc("DELETE /api/hosts/{id}", h.Delete)
	mux.HandleFunc("POST /api/hosts/{id}/actions/{action}", h.Action)

	// Connectivity tests
	t := rt.Tests
	mux.HandleFunc("GET /api/tests", t.History)
	mux.HandleFunc("POST /api/tests", t.Run)
	mux.HandleFunc("DELETE /api/tests", t.Clear)
	mux.HandleFunc("POST /api/tests/batch", t.RunBatch)
	mux.HandleFunc("GET /api/tests/export", t.Export)
	mux.HandleFunc("GET /api/tests/endpoints", t.Endpoints)

	// Monitoring
	mux.HandleFunc("GET /api/monitor", rt.Monitor.Get)
	mux.HandleFunc("PUT /api/monitor/refresh", rt.Monitor.SetRefresh)

	// Preferences
	mux.HandleFunc("GET /api/prefs/{key}", rt.Prefs.Get)
	mux.HandleFunc("PUT /api/prefs/{key}", rt.Prefs.Set)
	mux.HandleFunc("DELETE /api/prefs/{key}", rt.Prefs.Delete)

	if rt.Events != nil {
		mux.Handle("GET /events", rt.Events)
	}
	mux.Handle("GET /metrics", promhttp.HandlerFor(rt.Metrics.Prometheus(), promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		responder{logger: rt.Logger}.writeJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
	})

	return Chain(mux,
		Recover(rt.Logger),
		RequestID,
		CORS(rt.Origins),
		Logger(rt.Logger),
		Metrics(rt.Metrics),
	)
}
