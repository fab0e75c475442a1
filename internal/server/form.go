package server

import (
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/mesh-intelligence/phonebook/pkg/types"
)

//go:embed form.html
var formHTML string

var formTemplate = template.Must(template.New("form").Parse(formHTML))

// Flash message kinds, used as CSS classes.
const (
	flashSuccess = "success"
	flashError   = "error"
	flashWarning = "warning"
)

// Form serves the HTML page with add, search, delete and list.
// Every POST redirects back to the page with a flash message in the query.
type Form struct {
	Title  string
	Dir    types.Directory
	Logger *slog.Logger
}

// Register mounts the page on mux.
func (f *Form) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", f.index)
	mux.HandleFunc("POST /form/add", f.add)
	mux.HandleFunc("POST /form/search", f.search)
	mux.HandleFunc("POST /form/delete", f.del)
}

type flash struct {
	Kind    string
	Message string
}

type page struct {
	Title    string
	Flash    *flash
	Contacts []types.Contact
}

func (f *Form) index(w http.ResponseWriter, r *http.Request) {
	p := page{Title: f.Title, Contacts: f.Dir.List()}
	q := r.URL.Query()
	if msg := q.Get("msg"); msg != "" {
		p.Flash = &flash{Kind: q.Get("kind"), Message: msg}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := formTemplate.Execute(w, p); err != nil {
		f.Logger.Error("could not render page", "err", err)
	}
}

func (f *Form) add(w http.ResponseWriter, r *http.Request) {
	name, number := r.PostFormValue("name"), r.PostFormValue("number")
	if err := (types.Contact{Name: name, Number: number}).Validate(); err != nil {
		redirect(w, r, flashWarning, "Please enter both name and number.")
		return
	}
	if _, err := f.Dir.Add(r.Context(), name, number); err != nil {
		f.Logger.Error("could not add contact", "err", err)
		redirect(w, r, flashError, fmt.Sprintf("Error adding contact: %v", err))
		return
	}
	redirect(w, r, flashSuccess, fmt.Sprintf("Contact '%s' added successfully.", name))
}

func (f *Form) search(w http.ResponseWriter, r *http.Request) {
	name := r.PostFormValue("name")
	if name == "" {
		redirect(w, r, flashWarning, "Please enter a name to search.")
		return
	}
	number, err := f.Dir.Search(name)
	switch {
	case err == nil:
		redirect(w, r, flashSuccess, fmt.Sprintf("Contact found - Name: %s, Number: %s", name, number))
	case errors.Is(err, types.ErrNotFound):
		redirect(w, r, flashError, fmt.Sprintf("Contact '%s' not found in the phone book.", name))
	default:
		f.Logger.Error("could not search contacts", "err", err)
		redirect(w, r, flashError, fmt.Sprintf("Error searching contacts: %v", err))
	}
}

func (f *Form) del(w http.ResponseWriter, r *http.Request) {
	name := r.PostFormValue("name")
	if name == "" {
		redirect(w, r, flashWarning, "Please enter a name to delete.")
		return
	}
	_, err := f.Dir.Delete(r.Context(), name)
	switch {
	case err == nil:
		redirect(w, r, flashSuccess, fmt.Sprintf("Contact '%s' deleted successfully.", name))
	case errors.Is(err, types.ErrNotFound):
		redirect(w, r, flashError, fmt.Sprintf("Contact '%s' not found in the phone book.", name))
	default:
		f.Logger.Error("could not delete contact", "err", err)
		redirect(w, r, flashError, fmt.Sprintf("Error deleting contact: %v", err))
	}
}

func redirect(w http.ResponseWriter, r *http.Request, kind, msg string) {
	q := url.Values{"kind": {kind}, "msg": {msg}}
	http.Redirect(w, r, "/?"+q.Encode(), http.StatusSeeOther)
}
