package api

import (
	"net/http"

	"github.com/statushub/statushub/internal/logger"
	"github.com/statushub/statushub/internal/model"
	"github.com/statushub/statushub/internal/service"
)

// TableHandler exposes the table server surface: administrative table and
// entity operations plus the token-gated read and update paths.
type TableHandler struct {
	table  *service.Table
	logger *logger.Logger
}

func NewTableHandler(table *service.Table, logger *logger.Logger) *TableHandler {
	return &TableHandler{
		table:  table,
		logger: logger,
	}
}

// Register installs the routes. Prefix registrations catch requests whose
// path parameters are missing or surplus and reply 400 instead of the
// mux default 404.
func (h *TableHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /CreateTableAdmin/{table}", h.createTable)
	mux.HandleFunc("DELETE /DeleteTableAdmin/{table}", h.deleteTable)

	mux.HandleFunc("GET /ReadEntityAdmin/{table}", h.readAll)
	mux.HandleFunc("GET /ReadEntityAdmin/{table}/{partition}/{row}", h.readEntityAdmin)
	mux.HandleFunc("GET /ReadEntityAuth/{table}/{token}/{partition}/{row}", h.readEntityAuth)

	mux.HandleFunc("PUT /UpdateEntityAdmin/{table}/{partition}/{row}", h.updateEntityAdmin)
	mux.HandleFunc("PUT /UpdateEntityAuth/{table}/{token}/{partition}/{row}", h.updateEntityAuth)

	mux.HandleFunc("DELETE /DeleteEntityAdmin/{table}/{partition}/{row}", h.deleteEntity)

	// reserved mutation operations
	mux.HandleFunc("PUT /AddPropertyAdmin/{table}", h.notImplemented)
	mux.HandleFunc("PUT /UpdatePropertyAdmin/{table}", h.notImplemented)

	for _, prefix := range []string{
		"/CreateTableAdmin/", "/DeleteTableAdmin/",
		"/ReadEntityAdmin/", "/ReadEntityAuth/",
		"/UpdateEntityAdmin/", "/UpdateEntityAuth/",
		"/DeleteEntityAdmin/",
		"/AddPropertyAdmin/", "/UpdatePropertyAdmin/",
	} {
		mux.HandleFunc(prefix, badRequest)
	}
}

func (h *TableHandler) createTable(w http.ResponseWriter, r *http.Request) {
	created, err := h.table.CreateTable(r.Context(), r.PathValue("table"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	if created {
		w.WriteHeader(http.StatusCreated)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *TableHandler) deleteTable(w http.ResponseWriter, r *http.Request) {
	if err := h.table.DeleteTable(r.Context(), r.PathValue("table")); err != nil {
		handleError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// readAll serves the whole-table scan. An optional JSON body acts as a
// property filter: only entities carrying every named property are returned,
// and an empty match set reads as 404 with an empty array body.
func (h *TableHandler) readAll(w http.ResponseWriter, r *http.Request) {
	var propNames []string
	if r.ContentLength > 0 {
		props, err := decodeProperties(r.Body)
		if err != nil {
			handleError(w, h.logger, err)
			return
		}
		propNames = make([]string, 0, len(props))
		for name := range props {
			propNames = append(propNames, name)
		}
	}

	entities, err := h.table.ReadAll(r.Context(), r.PathValue("table"), propNames)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	if len(propNames) > 0 && len(entities) == 0 {
		writeJSON(w, http.StatusNotFound, []map[string]string{})
		return
	}
	h.writeEntities(w, entities)
}

// readEntityAdmin serves the single-entity read; the literal row `*` selects
// the whole partition instead.
func (h *TableHandler) readEntityAdmin(w http.ResponseWriter, r *http.Request) {
	table := r.PathValue("table")
	partition := r.PathValue("partition")
	row := r.PathValue("row")

	if row == "*" {
		entities, err := h.table.ReadPartition(r.Context(), table, partition)
		if err != nil {
			handleError(w, h.logger, err)
			return
		}
		if len(entities) == 0 {
			writeJSON(w, http.StatusNotFound, []map[string]string{})
			return
		}
		h.writeEntities(w, entities)
		return
	}

	entity, err := h.table.ReadEntity(r.Context(), table, partition, row)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entity.Properties)
}

func (h *TableHandler) readEntityAuth(w http.ResponseWriter, r *http.Request) {
	entity, err := h.table.AuthorizedRead(r.Context(),
		r.PathValue("token"),
		r.PathValue("table"),
		r.PathValue("partition"),
		r.PathValue("row"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entity.Properties)
}

func (h *TableHandler) updateEntityAdmin(w http.ResponseWriter, r *http.Request) {
	props, err := decodeProperties(r.Body)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	err = h.table.UpdateEntity(r.Context(),
		r.PathValue("table"),
		r.PathValue("partition"),
		r.PathValue("row"),
		props)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *TableHandler) updateEntityAuth(w http.ResponseWriter, r *http.Request) {
	props, err := decodeProperties(r.Body)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	err = h.table.AuthorizedUpdate(r.Context(),
		r.PathValue("token"),
		r.PathValue("table"),
		r.PathValue("partition"),
		r.PathValue("row"),
		props)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *TableHandler) deleteEntity(w http.ResponseWriter, r *http.Request) {
	err := h.table.DeleteEntity(r.Context(),
		r.PathValue("table"),
		r.PathValue("partition"),
		r.PathValue("row"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *TableHandler) notImplemented(w http.ResponseWriter, _ *http.Request) {
	handleError(w, h.logger, model.ErrNotImplemented)
}

func (h *TableHandler) writeEntities(w http.ResponseWriter, entities []model.Entity) {
	out := make([]map[string]string, 0, len(entities))
	for _, e := range entities {
		out = append(out, entityJSON(e))
	}
	writeJSON(w, http.StatusOK, out)
}
