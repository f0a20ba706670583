package server

import (
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/diagrammer/pkg/buildinfo"
	"github.com/matzehuels/diagrammer/pkg/diagram"
	derrors "github.com/matzehuels/diagrammer/pkg/errors"
	"github.com/matzehuels/diagrammer/pkg/forms"
	"github.com/matzehuels/diagrammer/pkg/render"
)

// confirmed reads the confirm query flag that destructive requests must carry.
func confirmed(r *http.Request) forms.Confirmer {
	ok, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	return forms.Preconfirmed(ok)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"stats": s.store.Snapshot().Stats()}
	if s.status != nil {
		resp["persistence"] = s.status.Status()
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// Diagram
// =============================================================================

func (s *Server) getDiagram(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Snapshot().Stats())
}

// replaceDiagram imports a whole diagram. Dangling edges are dropped.
func (s *Server) replaceDiagram(w http.ResponseWriter, r *http.Request) {
	var d diagram.Diagram
	if err := decodeJSON(w, r, &d); err != nil {
		s.writeError(w, r, err)
		return
	}
	for _, n := range d.Nodes {
		if err := derrors.ValidateID(n.ID); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	if _, err := confirmed(r).Confirm(r.Context(), "Replace the diagram?"); err != nil {
		s.writeError(w, r, err)
		return
	}
	clean, dropped := d.Sanitize()
	if dropped > 0 {
		s.logger.Warn("dropped dangling edges on import", "count", dropped)
	}
	writeJSON(w, http.StatusOK, s.store.Replace(r.Context(), clean))
}

func (s *Server) clearDiagram(w http.ResponseWriter, r *http.Request) {
	if err := s.forms.ClearAll(r.Context(), confirmed(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

// =============================================================================
// Nodes
// =============================================================================

func (s *Server) listNodes(w http.ResponseWriter, r *http.Request) {
	nodes := s.store.Snapshot().Nodes
	if nodes == nil {
		nodes = []diagram.Node{}
	}
	writeJSON(w, http.StatusOK, nodes)
}

func (s *Server) getNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	n, ok := s.store.Snapshot().Node(id)
	if !ok {
		s.writeError(w, r, derrors.New(derrors.ErrCodeNotFound, "node %s not found", id))
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) addNode(w http.ResponseWriter, r *http.Request) {
	var in forms.NodeInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	n, err := s.forms.AddNode(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (s *Server) editNode(w http.ResponseWriter, r *http.Request) {
	var in forms.NodeInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	n, err := s.forms.EditNode(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) deleteNode(w http.ResponseWriter, r *http.Request) {
	if err := s.forms.DeleteNode(r.Context(), chi.URLParam(r, "id"), confirmed(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) applyNodeChanges(w http.ResponseWriter, r *http.Request) {
	var changes []diagram.NodeChange
	if err := decodeJSON(w, r, &changes); err != nil {
		s.writeError(w, r, err)
		return
	}
	if i := slices.IndexFunc(changes, func(c diagram.NodeChange) bool { return c.ID == "" }); i >= 0 {
		s.writeError(w, r, derrors.New(derrors.ErrCodeInvalidChange, "change %d has no id", i))
		return
	}
	writeJSON(w, http.StatusOK, s.store.ApplyNodeChanges(r.Context(), changes))
}

// =============================================================================
// Edges
// =============================================================================

func (s *Server) listEdges(w http.ResponseWriter, r *http.Request) {
	edges := s.store.Snapshot().Edges
	if edges == nil {
		edges = []diagram.Edge{}
	}
	writeJSON(w, http.StatusOK, edges)
}

func (s *Server) getEdge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	e, ok := s.store.Snapshot().Edge(id)
	if !ok {
		s.writeError(w, r, derrors.New(derrors.ErrCodeNotFound, "edge %s not found", id))
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) addEdge(w http.ResponseWriter, r *http.Request) {
	var in forms.EdgeInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	e, err := s.forms.AddEdge(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) editEdge(w http.ResponseWriter, r *http.Request) {
	var in forms.EdgeInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	e, err := s.forms.EditEdge(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) deleteEdge(w http.ResponseWriter, r *http.Request) {
	if err := s.forms.DeleteEdge(r.Context(), chi.URLParam(r, "id"), confirmed(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) applyEdgeChanges(w http.ResponseWriter, r *http.Request) {
	var changes []diagram.EdgeChange
	if err := decodeJSON(w, r, &changes); err != nil {
		s.writeError(w, r, err)
		return
	}
	if i := slices.IndexFunc(changes, func(c diagram.EdgeChange) bool { return c.ID == "" }); i >= 0 {
		s.writeError(w, r, derrors.New(derrors.ErrCodeInvalidChange, "change %d has no id", i))
		return
	}
	writeJSON(w, http.StatusOK, s.store.ApplyEdgeChanges(r.Context(), changes))
}

// =============================================================================
// View and export
// =============================================================================

func (s *Server) fitView(w http.ResponseWriter, r *http.Request) {
	width, err := positiveFloat(r, "width")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	height, err := positiveFloat(r, "height")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	vp := diagram.FitView(s.store.Snapshot().Nodes, width, height, diagram.DefaultFitOptions())
	writeJSON(w, http.StatusOK, vp)
}

func positiveFloat(r *http.Request, name string) (float64, error) {
	v, err := strconv.ParseFloat(r.URL.Query().Get(name), 64)
	if err != nil || v <= 0 {
		return 0, derrors.New(derrors.ErrCodeInvalidInput, "%s must be a positive number", name)
	}
	return v, nil
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		format = render.FormatSVG
	}
	auto, _ := strconv.ParseBool(q.Get("auto_layout"))
	detailed, _ := strconv.ParseBool(q.Get("detailed"))

	out, err := render.Export(r.Context(), s.store.Snapshot(), format, render.Options{AutoLayout: auto, Detailed: detailed})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", render.ContentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}
