// Package v0 provides the REST API handlers of the pipeline tracker.
package v0

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stacklok/pipeline-tracker/internal/api/common"
	"github.com/stacklok/pipeline-tracker/internal/service"
	"github.com/stacklok/pipeline-tracker/internal/versions"
)

// Routes holds the handlers backed by the query service
type Routes struct {
	service service.QueryService
}

// NewRoutes creates a new Routes instance with the provided service
func NewRoutes(svc service.QueryService) *Routes {
	return &Routes{
		service: svc,
	}
}

// HealthRouter creates a router for health check endpoints
func HealthRouter(svc service.QueryService) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", healthHandler)
	r.Get("/readiness", readinessHandler(svc))
	r.Get("/version", versionHandler)

	return r
}

// HistoryRouter creates a router for change history endpoints
func HistoryRouter(svc service.QueryService) http.Handler {
	routes := NewRoutes(svc)

	r := chi.NewRouter()
	r.Get("/{kind}/{name}", routes.getHistory)
	r.Get("/{kind}/{namespace}/{name}", routes.getHistory)

	return r
}

// StatusRouter creates a router for per-project reconciliation status endpoints
func StatusRouter(svc service.QueryService) http.Handler {
	routes := NewRoutes(svc)

	r := chi.NewRouter()
	r.Get("/", routes.listSyncStatuses)
	r.Get("/{project}", routes.getSyncStatus)

	return r
}

// healthHandler handles health check requests
//
// @Summary		Health check
// @Tags			system
// @Produce		json
// @Success		200	{object}	map[string]string
// @Router			/health [get]
func healthHandler(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readinessHandler handles readiness check requests
//
// @Summary		Readiness check
// @Tags			system
// @Produce		json
// @Success		200	{object}	map[string]string
// @Failure		503	{object}	map[string]string
// @Router			/readiness [get]
func readinessHandler(svc service.QueryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.CheckReadiness(r.Context()); err != nil {
			common.WriteError(w, http.StatusServiceUnavailable, "Service not ready: "+err.Error())
			return
		}
		common.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// versionHandler handles version information requests
//
// @Summary		Version information
// @Tags			system
// @Produce		json
// @Success		200	{object}	versions.VersionInfo
// @Router			/version [get]
func versionHandler(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSON(w, http.StatusOK, versions.GetVersionInfo())
}

// getHistory handles GET /history/{kind}/{name} and /history/{kind}/{namespace}/{name}
//
// @Summary		Change history of an entity
// @Description	Returns the pipeline status of every tracked change of the entity's project
// @Tags			history
// @Produce		json
// @Param			kind		path		string	true	"Entity kind"
// @Param			namespace	path		string	false	"Entity namespace"
// @Param			name		path		string	true	"Entity name"
// @Success		200			{array}		pipeline.ChangePipelineStatus
// @Failure		400			{object}	common.ErrorResponse
// @Failure		422			{object}	common.ErrorResponse
// @Router			/history/{kind}/{name} [get]
func (routes *Routes) getHistory(w http.ResponseWriter, r *http.Request) {
	ref, err := common.EntityRefParam(r)
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	history, err := routes.service.GetHistory(r.Context(), ref)
	if err != nil {
		common.WriteQueryError(w, r, err, ref.String(), "Failed to get change history")
		return
	}

	common.WriteJSON(w, http.StatusOK, history)
}

// listSyncStatuses handles GET /status
//
// @Summary		Reconciliation status of all projects
// @Tags			status
// @Produce		json
// @Success		200	{object}	map[string]status.ProjectSyncStatus
// @Router			/status [get]
func (routes *Routes) listSyncStatuses(w http.ResponseWriter, r *http.Request) {
	statuses, err := routes.service.ListSyncStatuses(r.Context())
	if err != nil {
		common.WriteQueryError(w, r, err, "all projects", "Failed to list sync statuses")
		return
	}
	common.WriteJSON(w, http.StatusOK, statuses)
}

// getSyncStatus handles GET /status/{project}
//
// @Summary		Reconciliation status of one project
// @Tags			status
// @Produce		json
// @Param			project	path		string	true	"Project name (URL-encoded)"
// @Success		200		{object}	status.ProjectSyncStatus
// @Failure		404		{object}	common.ErrorResponse
// @Router			/status/{project} [get]
func (routes *Routes) getSyncStatus(w http.ResponseWriter, r *http.Request) {
	project, err := common.PathParam(r, "project")
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	st, err := routes.service.GetSyncStatus(r.Context(), project)
	if err != nil {
		common.WriteQueryError(w, r, err, project, "Failed to get sync status")
		return
	}
	common.WriteJSON(w, http.StatusOK, st)
}
