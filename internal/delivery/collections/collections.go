package collections

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"sgfkit/internal/bootstrap"
	"sgfkit/internal/domain/collection"
	"sgfkit/internal/httpresponse"
	collectionsuc "sgfkit/internal/usecase/collections"
	"sgfkit/internal/utils"
)

type CollectionHandler struct {
	cfg          bootstrap.Config
	log          *zap.SugaredLogger
	collectionUC *collectionsuc.CollectionUseCase
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func NewCollectionHandler(cfg bootstrap.Config, log *zap.SugaredLogger, collectionUC *collectionsuc.CollectionUseCase) *CollectionHandler {
	return &CollectionHandler{
		cfg:          cfg,
		log:          log,
		collectionUC: collectionUC,
	}
}

func (h *CollectionHandler) Router(r chi.Router) {
	r.Post("/parse", h.HandleParse)
	r.Get("/ws", h.HandleParseStream)
	r.Route("/collections", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Post("/import", h.HandleImport)
		r.Get("/{id}", h.HandleGet)
		r.Get("/{id}/sgf", h.HandleGetSGF)
		r.Get("/{id}/mainline", h.HandleMainLine)
		r.Delete("/{id}", h.HandleDelete)
	})
}

// strictParam reads ?strict=, falling back to the configured default.
func (h *CollectionHandler) strictParam(r *http.Request) (bool, error) {
	raw := r.URL.Query().Get("strict")
	if raw == "" {
		return h.collectionUC.StrictByDefault(), nil
	}
	return strconv.ParseBool(raw)
}

func intParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func (h *CollectionHandler) HandleParse(w http.ResponseWriter, r *http.Request) {
	strict, err := h.strictParam(r)
	if err != nil {
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, httpresponse.ErrorResponse{ErrorDescription: "invalid strict flag"})
		return
	}

	body, err := utils.ReadRequestBody(w, r, h.cfg.MaxSgfBytes)
	if err != nil {
		httpresponse.WriteError(h.log, w, err)
		return
	}

	tree, err := h.collectionUC.Parse(string(body), strict)
	if err != nil {
		httpresponse.WriteError(h.log, w, err)
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusOK, collection.NewParseResponse(tree))
}

func (h *CollectionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	strict, err := h.strictParam(r)
	if err != nil {
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, httpresponse.ErrorResponse{ErrorDescription: "invalid strict flag"})
		return
	}

	body, err := utils.ReadRequestBody(w, r, h.cfg.MaxSgfBytes)
	if err != nil {
		httpresponse.WriteError(h.log, w, err)
		return
	}

	created, err := h.collectionUC.Create(r.Context(), r.URL.Query().Get("name"), string(body), strict)
	if err != nil {
		httpresponse.WriteError(h.log, w, err)
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusCreated, created)
}

func (h *CollectionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	pageNum, err := intParam(r, "page", 1)
	if err != nil || pageNum < 1 {
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, httpresponse.ErrorResponse{ErrorDescription: "invalid page"})
		return
	}

	page, err := h.collectionUC.List(r.Context(), pageNum)
	if err != nil {
		httpresponse.WriteError(h.log, w, err)
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusOK, page)
}

func (h *CollectionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	found, err := h.collectionUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpresponse.WriteError(h.log, w, err)
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusOK, found)
}

func (h *CollectionHandler) HandleGetSGF(w http.ResponseWriter, r *http.Request) {
	text, err := h.collectionUC.SGF(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpresponse.WriteError(h.log, w, err)
		return
	}

	w.Header().Set("Content-Type", "application/x-go-sgf; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

func (h *CollectionHandler) HandleMainLine(w http.ResponseWriter, r *http.Request) {
	game, err := intParam(r, "game", 0)
	if err != nil {
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, httpresponse.ErrorResponse{ErrorDescription: "invalid game"})
		return
	}

	line, err := h.collectionUC.MainLine(r.Context(), chi.URLParam(r, "id"), game)
	if err != nil {
		httpresponse.WriteError(h.log, w, err)
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusOK, line)
}

func (h *CollectionHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.collectionUC.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpresponse.WriteError(h.log, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CollectionHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	var req collection.ImportRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		h.log.Debugw("import request rejected", "error", err)
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, httpresponse.ErrorResponse{ErrorDescription: err.Error()})
		return
	}
	if req.Path == "" {
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, httpresponse.ErrorResponse{ErrorDescription: "path is required"})
		return
	}

	strict := h.collectionUC.StrictByDefault()
	if req.Strict != nil {
		strict = *req.Strict
	}

	resp, err := h.collectionUC.ImportDirectory(r.Context(), req.Path, strict)
	if err != nil {
		httpresponse.WriteError(h.log, w, err)
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusOK, resp)
}
