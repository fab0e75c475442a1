package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mesh-intelligence/phonebook/pkg/types"
)

// Contacts serves the contact directory over the REST API.
type Contacts struct {
	Dir          types.Directory
	ErrorHandler func(context.Context, error)
}

// Register mounts the contact operations under /contacts.
func (h *Contacts) Register(api huma.API) {
	api = huma.NewGroup(api, "/contacts")
	huma.Get(api, "",
		reportErrors(h.list, h.ErrorHandler),
	)
	huma.Post(api, "",
		reportErrors(h.add, h.ErrorHandler),
		succeedsWith(http.StatusCreated),
		documents(http.StatusUnprocessableEntity, http.StatusInternalServerError),
	)
	huma.Get(api, "/{name}",
		reportErrors(h.search, h.ErrorHandler),
		documents(http.StatusNotFound),
	)
	huma.Delete(api, "/{name}",
		reportErrors(h.del, h.ErrorHandler),
		documents(http.StatusNotFound, http.StatusInternalServerError),
	)
}

type ContactModel struct {
	ID     int64  `json:"id" readOnly:"true" example:"1"`
	Name   string `json:"name" minLength:"1" example:"Alice"`
	Number string `json:"number" minLength:"1" example:"555-0001"`
}

func toModel(c types.Contact) ContactModel {
	return ContactModel{ID: c.ID, Name: c.Name, Number: c.Number}
}

type ContactsListOutput struct {
	Body []ContactModel
}

func (h *Contacts) list(_ context.Context, _ *struct{}) (*ContactsListOutput, error) {
	body := make([]ContactModel, 0)
	for c := range h.Dir.All() {
		body = append(body, toModel(c))
	}
	return &ContactsListOutput{Body: body}, nil
}

type ContactsAddInput struct {
	Body struct {
		Name   string `json:"name" minLength:"1" example:"Alice" doc:"Contact name, need not be unique"`
		Number string `json:"number" minLength:"1" example:"555-0001" doc:"Contact number"`
	}
}

type ContactsAddOutput struct {
	Body ContactModel
}

func (h *Contacts) add(ctx context.Context, input *ContactsAddInput) (*ContactsAddOutput, error) {
	c := types.Contact{Name: input.Body.Name, Number: input.Body.Number}
	if err := c.Validate(); err != nil {
		return nil, huma.Error422UnprocessableEntity(err.Error(), err)
	}

	added, err := h.Dir.Add(ctx, c.Name, c.Number)
	if err != nil {
		return nil, huma.Error500InternalServerError("could not add contact", err)
	}
	return &ContactsAddOutput{Body: toModel(added)}, nil
}

type ContactsSearchOutput struct {
	Body struct {
		Name   string `json:"name" example:"Alice"`
		Number string `json:"number" example:"555-0001"`
	}
}

func (h *Contacts) search(_ context.Context, input *struct {
	Name string `path:"name" example:"Alice" doc:"Exact, case-sensitive name to look up"`
}) (*ContactsSearchOutput, error) {
	number, err := h.Dir.Search(input.Name)
	switch {
	case err == nil:
		out := &ContactsSearchOutput{}
		out.Body.Name = input.Name
		out.Body.Number = number
		return out, nil

	case errors.Is(err, types.ErrNotFound):
		return nil, huma.Error404NotFound("contact not found", err)

	default:
		return nil, err
	}
}

type ContactsDeleteOutput struct {
	Body struct {
		Deleted int `json:"deleted" example:"1" doc:"Number of contacts removed"`
	}
}

func (h *Contacts) del(ctx context.Context, input *struct {
	Name string `path:"name" example:"Alice" doc:"Every contact with this exact name is removed"`
}) (*ContactsDeleteOutput, error) {
	n, err := h.Dir.Delete(ctx, input.Name)
	switch {
	case err == nil:
		out := &ContactsDeleteOutput{}
		out.Body.Deleted = n
		return out, nil

	case errors.Is(err, types.ErrNotFound):
		return nil, huma.Error404NotFound("contact not found", err)

	default:
		return nil, huma.Error500InternalServerError("could not delete contact", err)
	}
}
