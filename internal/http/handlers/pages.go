package handlers

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/hongminglow/moneyhive-bank/internal/bank"
	"github.com/hongminglow/moneyhive-bank/internal/money"
)

//go:embed templates/*.html
var templateFS embed.FS

// notificationDateLayout mirrors how the feed dates were shown before.
const notificationDateLayout = "2006-01-02 15:04:05"

type page struct {
	name    string
	path    string
	label   string
	heading string
}

// Navigation order of the sidebar menu.
var pages = []page{
	{name: "home", path: "/", label: "Home", heading: "Welcome to MoneyHive Bank"},
	{name: "account", path: "/account", label: "Account", heading: "Create a New Account"},
	{name: "login", path: "/login", label: "Login", heading: "Login to Your Account"},
	{name: "notifications", path: "/notifications", label: "Notifications", heading: "Notifications"},
	{name: "support", path: "/support", label: "Customer Service", heading: "Contact Customer Service"},
}

type menuItem struct {
	Path   string
	Label  string
	Active bool
}

type alert struct {
	Kind string // success, error or info
	Text string
}

type notificationView struct {
	Message string
	Date    string
}

type viewData struct {
	Title         string
	Heading       string
	Menu          []menuItem
	Alerts        []alert
	Username      string
	Notifications []notificationView

	status int
}

// PagesHandler renders the five HTML views.
type PagesHandler struct {
	bank               *bank.Service
	currency           string
	notificationsLimit int64
	log                zerolog.Logger
	views              map[string]*template.Template
}

// NewPagesHandler parses the embedded templates and returns the handler.
func NewPagesHandler(svc *bank.Service, currency string, notificationsLimit int64, log zerolog.Logger) (*PagesHandler, error) {
	views := make(map[string]*template.Template, len(pages))
	for _, p := range pages {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+p.name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s view: %w", p.name, err)
		}
		views[p.name] = tmpl
	}
	return &PagesHandler{
		bank:               svc,
		currency:           currency,
		notificationsLimit: notificationsLimit,
		log:                log.With().Str("pkg", "pages").Logger(),
		views:              views,
	}, nil
}

// Register attaches the page routes.
func (h *PagesHandler) Register(r *mux.Router) {
	r.HandleFunc("/", h.home).Methods(http.MethodGet)
	r.HandleFunc("/account", h.account).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/login", h.login).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/notifications", h.notifications).Methods(http.MethodGet)
	r.HandleFunc("/support", h.support).Methods(http.MethodGet, http.MethodPost)
}

func (h *PagesHandler) home(w http.ResponseWriter, r *http.Request) {
	h.render(w, "home", viewData{})
}

func (h *PagesHandler) account(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.render(w, "account", viewData{})
		return
	}
	if err := r.ParseForm(); err != nil {
		h.render(w, "account", viewData{Alerts: []alert{{Kind: "error", Text: "Could not read the form."}}})
		return
	}
	username := r.PostFormValue("username")
	data := viewData{Username: username}

	_, err := h.bank.Register(r.Context(), username, r.PostFormValue("password"))
	switch {
	case err == nil:
		data.Alerts = []alert{{Kind: "success", Text: bank.MsgRegistered}}
	case errors.Is(err, bank.ErrDuplicateUsername):
		data.Alerts = []alert{{Kind: "error", Text: bank.MsgDuplicateUsername}}
	case errors.Is(err, bank.ErrInvalidInput):
		data.Alerts = []alert{{Kind: "error", Text: "Please enter a username and a password."}}
	default:
		h.failure(&data, "register", err)
	}
	h.render(w, "account", data)
}

func (h *PagesHandler) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.render(w, "login", viewData{})
		return
	}
	if err := r.ParseForm(); err != nil {
		h.render(w, "login", viewData{Alerts: []alert{{Kind: "error", Text: "Could not read the form."}}})
		return
	}
	username := r.PostFormValue("username")
	data := viewData{Username: username}

	user, err := h.bank.Authenticate(r.Context(), username, r.PostFormValue("password"))
	switch {
	case err == nil:
		data.Alerts = []alert{
			{Kind: "success", Text: fmt.Sprintf("Welcome back, %s!", user.Username)},
			{Kind: "info", Text: "Your current balance is: " + money.Format(h.currency, user.Balance)},
		}
	case errors.Is(err, bank.ErrInvalidCredentials):
		data.Alerts = []alert{{Kind: "error", Text: bank.MsgInvalidCredentials}}
	default:
		h.failure(&data, "login", err)
	}
	h.render(w, "login", data)
}

func (h *PagesHandler) notifications(w http.ResponseWriter, r *http.Request) {
	var data viewData
	for n, err := range h.bank.Notifications(r.Context(), h.notificationsLimit) {
		if err != nil {
			h.failure(&data, "notifications", err)
			data.Notifications = nil
			break
		}
		data.Notifications = append(data.Notifications, notificationView{
			Message: n.Message,
			Date:    n.Timestamp.Format(notificationDateLayout),
		})
	}
	h.render(w, "notifications", data)
}

func (h *PagesHandler) support(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.render(w, "support", viewData{})
		return
	}
	_ = r.ParseForm()
	ack := h.bank.ContactSupport(r.Context(), bank.SupportMessage{
		Name:    r.PostFormValue("name"),
		Email:   r.PostFormValue("email"),
		Message: r.PostFormValue("message"),
	})
	h.render(w, "support", viewData{Alerts: []alert{{Kind: "success", Text: ack}}})
}

// failure replaces the page alerts with the generic outage message.
func (h *PagesHandler) failure(data *viewData, op string, err error) {
	data.status = http.StatusServiceUnavailable
	if !errors.Is(err, bank.ErrServiceUnavailable) {
		h.log.Error().Err(err).Str("op", op).Msg("page request failed")
		data.status = http.StatusInternalServerError
	}
	data.Alerts = []alert{{Kind: "error", Text: bank.MsgUnavailable}}
}

func (h *PagesHandler) render(w http.ResponseWriter, name string, data viewData) {
	for _, p := range pages {
		data.Menu = append(data.Menu, menuItem{Path: p.path, Label: p.label, Active: p.name == name})
		if p.name == name {
			data.Title = p.label
			data.Heading = p.heading
		}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if data.status != 0 {
		w.WriteHeader(data.status)
	}
	if err := h.views[name].ExecuteTemplate(w, "layout", data); err != nil {
		h.log.Error().Err(err).Str("view", name).Msg("render view")
	}
}
