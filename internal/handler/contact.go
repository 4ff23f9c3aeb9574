package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/addressbook/addressbook-go/internal/logger"
	"github.com/addressbook/addressbook-go/internal/middleware"
	"github.com/addressbook/addressbook-go/internal/model"
	"github.com/addressbook/addressbook-go/internal/service"
)

// ContactHandler handles HTTP requests for the caller's address book.
type ContactHandler struct {
	service *service.ContactService
	log     *zap.Logger
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(svc *service.ContactService, log *zap.Logger) *ContactHandler {
	return &ContactHandler{service: svc, log: log}
}

// HandleList handles GET /api/contacts/ requests.
func (h *ContactHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	owner, page, ok := h.listParams(w, r, service.DefaultContactLimit)
	if !ok {
		return
	}

	contacts, err := h.service.List(r.Context(), owner, r.URL.Query().Get("filter"), page)
	if err != nil {
		h.writeError(w, r, "list contacts", err)
		return
	}

	writeJSON(w, http.StatusOK, contacts)
}

// HandleBirthdays handles GET /api/contacts/birthdays/ requests.
func (h *ContactHandler) HandleBirthdays(w http.ResponseWriter, r *http.Request) {
	owner, page, ok := h.listParams(w, r, service.DefaultBirthdayLimit)
	if !ok {
		return
	}

	contacts, err := h.service.UpcomingBirthdays(r.Context(), owner, page)
	if err != nil {
		h.writeError(w, r, "upcoming birthdays", err)
		return
	}

	writeJSON(w, http.StatusOK, contacts)
}

// HandleGet handles GET /api/contacts/{contact_id} requests.
func (h *ContactHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := h.itemParams(w, r)
	if !ok {
		return
	}

	contact, err := h.service.Get(r.Context(), owner, id)
	if err != nil {
		h.writeError(w, r, "get contact", err)
		return
	}

	writeJSON(w, http.StatusOK, contact)
}

// HandleCreate handles POST /api/contacts/ requests.
func (h *ContactHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.UserFromContext(r.Context())
	if !ok {
		middleware.WriteUnauthorized(w, "not authenticated")
		return
	}

	var req model.ContactRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	contact, err := h.service.Create(r.Context(), owner, req)
	if err != nil {
		h.writeError(w, r, "create contact", err)
		return
	}

	writeJSON(w, http.StatusCreated, contact)
}

// HandleUpdate handles PATCH /api/contacts/{contact_id} requests.
func (h *ContactHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := h.itemParams(w, r)
	if !ok {
		return
	}

	var patch model.ContactPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	contact, err := h.service.Update(r.Context(), owner, id, patch)
	if err != nil {
		h.writeError(w, r, "update contact", err)
		return
	}
	if contact == nil {
		writeJSON(w, http.StatusNotFound, errorResponse(service.ErrContactNotFound.Error()))
		return
	}

	writeJSON(w, http.StatusOK, contact)
}

// HandleDelete handles DELETE /api/contacts/{contact_id} requests and
// returns the removed contact.
func (h *ContactHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := h.itemParams(w, r)
	if !ok {
		return
	}

	contact, err := h.service.Remove(r.Context(), owner, id)
	if err != nil {
		h.writeError(w, r, "delete contact", err)
		return
	}
	if contact == nil {
		writeJSON(w, http.StatusNotFound, errorResponse(service.ErrContactNotFound.Error()))
		return
	}

	writeJSON(w, http.StatusOK, contact)
}

func (h *ContactHandler) listParams(w http.ResponseWriter, r *http.Request, defaultLimit int) (*model.User, service.Page, bool) {
	owner, ok := middleware.UserFromContext(r.Context())
	if !ok {
		middleware.WriteUnauthorized(w, "not authenticated")
		return nil, service.Page{}, false
	}

	skip, okSkip := queryInt(r, "skip", 0)
	limit, okLimit := queryInt(r, "limit", defaultLimit)
	if !okSkip || !okLimit {
		writeJSON(w, http.StatusBadRequest, errorResponse("skip and limit must be integers"))
		return nil, service.Page{}, false
	}
	return owner, service.Page{Skip: skip, Limit: limit}, true
}

func (h *ContactHandler) itemParams(w http.ResponseWriter, r *http.Request) (*model.User, int64, bool) {
	owner, ok := middleware.UserFromContext(r.Context())
	if !ok {
		middleware.WriteUnauthorized(w, "not authenticated")
		return nil, 0, false
	}

	id, ok := pathID(r, "contact_id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid contact id"))
		return nil, 0, false
	}
	return owner, id, true
}

func (h *ContactHandler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, service.ErrContactNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, model.ErrInvalidFilter),
		errors.Is(err, model.ErrInvalidBirthday),
		errors.Is(err, service.ErrNameRequired),
		errors.Is(err, service.ErrInvalidPagination):
		writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
	default:
		logger.FromContext(r.Context(), h.log).Error(op, zap.Error(err))
		internalError(w)
	}
}
