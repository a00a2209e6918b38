package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// resourceStore is the CRUD shape shared by every calendar source repository.
type resourceStore[T any] interface {
	FindByID(ctx context.Context, id string) (T, error)
	FindAll(ctx context.Context) ([]T, error)
	Create(ctx context.Context, record T) (T, error)
	Update(ctx context.Context, record T) error
	Delete(ctx context.Context, id string) error
}

// ResourceHandler serves list/get/create/update/delete for one record type.
type ResourceHandler[T any] struct {
	name  string
	store resourceStore[T]
	setID func(record *T, id string)
}

func NewResourceHandler[T any](name string, store resourceStore[T], setID func(record *T, id string)) *ResourceHandler[T] {
	return &ResourceHandler[T]{name: name, store: store, setID: setID}
}

// Routes mounts the handler under a chi sub-router.
func (handler *ResourceHandler[T]) Routes(r chi.Router) {
	r.Get("/", handler.List)
	r.Post("/", handler.Create)
	r.Get("/{id}", handler.Get)
	r.Put("/{id}", handler.Update)
	r.Delete("/{id}", handler.Delete)
}

func (handler *ResourceHandler[T]) List(w http.ResponseWriter, r *http.Request) {
	records, err := handler.store.FindAll(r.Context())
	if err != nil {
		writeFailure(w, "listing "+handler.name, err)
		return
	}
	if records == nil {
		records = []T{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (handler *ResourceHandler[T]) Get(w http.ResponseWriter, r *http.Request) {
	record, err := handler.store.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, "finding "+handler.name, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (handler *ResourceHandler[T]) Create(w http.ResponseWriter, r *http.Request) {
	var record T
	if !decodeJSON(w, r, &record) {
		return
	}
	handler.setID(&record, "")

	created, err := handler.store.Create(r.Context(), record)
	if err != nil {
		writeFailure(w, "creating "+handler.name, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (handler *ResourceHandler[T]) Update(w http.ResponseWriter, r *http.Request) {
	var record T
	if !decodeJSON(w, r, &record) {
		return
	}
	id := chi.URLParam(r, "id")
	handler.setID(&record, id)

	if err := handler.store.Update(r.Context(), record); err != nil {
		writeFailure(w, "updating "+handler.name, err)
		return
	}

	updated, err := handler.store.FindByID(r.Context(), id)
	if err != nil {
		writeFailure(w, "finding "+handler.name, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (handler *ResourceHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	if err := handler.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeFailure(w, "deleting "+handler.name, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
