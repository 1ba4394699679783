package api

import (
	"context"
	_ "embed"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"wholesale-registration-app/internal/application"
	"wholesale-registration-app/internal/domain"
	"wholesale-registration-app/internal/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// maxFormMemory caps the part of a multipart body held in memory
const maxFormMemory = 32 << 20

//go:embed templates/admin_home.html
var adminHomeSource string

var adminHomeTemplate = template.Must(template.New("admin_home").Parse(adminHomeSource))

// ShopResolver determines the shop a storefront request belongs to
type ShopResolver interface {
	Resolve(r *http.Request) (string, error)
}

// SessionLoader finds the offline session of a shop
type SessionLoader interface {
	Load(ctx context.Context, shop string) (*domain.Session, error)
}

// Registrar runs the registration workflow
type Registrar interface {
	Register(ctx context.Context, client ports.AdminClient, form domain.RegistrationForm, note string) (*domain.RegistrationResult, error)
}

// Provisioner runs the storefront setup for a shop
type Provisioner interface {
	Provision(ctx context.Context, shop string, client ports.AdminClient) *domain.ProvisioningReport
}

// Handler serves the app proxy and embedded admin routes
type Handler struct {
	shops        ShopResolver
	sessions     SessionLoader
	clients      ports.AdminClientFactory
	verifier     ports.AppVerifier
	registration Registrar
	provisioning Provisioner
	logger       zerolog.Logger
}

// NewHandler creates a new handler
func NewHandler(
	shops ShopResolver,
	sessions SessionLoader,
	clients ports.AdminClientFactory,
	verifier ports.AppVerifier,
	registration Registrar,
	provisioning Provisioner,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		shops:        shops,
		sessions:     sessions,
		clients:      clients,
		verifier:     verifier,
		registration: registration,
		provisioning: provisioning,
		logger:       logger,
	}
}

// Routes mounts the app routes on r
func (h *Handler) Routes(r chi.Router) {
	r.Get("/apps/proxy", h.ProxyStatus)
	r.Post("/apps/proxy", h.ProxyRegister)
	r.Get("/app", h.AdminHome)
	r.Post("/app", h.AdminRegister)
}

func (h *Handler) requestLogger(r *http.Request) zerolog.Logger {
	return h.logger.With().
		Str("request_id", middleware.GetReqID(r.Context())).
		Str("path", r.URL.Path).
		Logger()
}

// ProxyStatus answers the storefront loader
func (h *Handler) ProxyStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "App Proxy route working ✅"})
}

// ProxyRegister handles the wholesale form posted through the app proxy
func (h *Handler) ProxyRegister(w http.ResponseWriter, r *http.Request) {
	log := h.requestLogger(r)

	if err := parseForm(r); err != nil {
		log.Warn().Err(err).Msg("Failed to parse form")
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid form data", Details: err.Error()})
		return
	}

	shop, err := h.shops.Resolve(r)
	if err != nil {
		writeError(w, log, err)
		return
	}

	h.register(w, r, log.With().Str("shop", shop).Logger(), shop, application.ProxyRegistrationNote)
}

// AdminRegister handles the quick order form submitted from the embedded admin
func (h *Handler) AdminRegister(w http.ResponseWriter, r *http.Request) {
	log := h.requestLogger(r)

	shop, err := h.verifier.VerifyAdminRequest(r.URL)
	if err != nil {
		log.Warn().Err(err).Msg("Admin request verification failed")
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}
	if err := parseForm(r); err != nil {
		log.Warn().Err(err).Msg("Failed to parse form")
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid form data", Details: err.Error()})
		return
	}

	h.register(w, r, log.With().Str("shop", shop).Logger(), shop, application.AdminRegistrationNote)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request, log zerolog.Logger, shop, note string) {
	ctx := r.Context()

	session, err := h.sessions.Load(ctx, shop)
	if err != nil {
		writeError(w, log, err)
		return
	}

	client, err := h.clients.ForSession(r, shop, session)
	if err != nil {
		writeError(w, log, err)
		return
	}

	result, err := h.registration.Register(ctx, client, formFromRequest(r), note)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type adminHomeView struct {
	Shop    string
	Report  *domain.ProvisioningReport
	PageURL string
}

// AdminHome renders the embedded app page after provisioning the storefront
func (h *Handler) AdminHome(w http.ResponseWriter, r *http.Request) {
	log := h.requestLogger(r)
	ctx := r.Context()

	shop, err := h.verifier.VerifyAdminRequest(r.URL)
	if err != nil {
		log.Warn().Err(err).Msg("Admin request verification failed")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	log = log.With().Str("shop", shop).Logger()

	session, err := h.sessions.Load(ctx, shop)
	if err != nil {
		writeError(w, log, err)
		return
	}
	client, err := h.clients.ForSession(r, shop, session)
	if err != nil {
		writeError(w, log, err)
		return
	}

	report := h.provisioning.Provision(ctx, shop, client)

	view := adminHomeView{Shop: shop, Report: report}
	if report.PageHandle != "" {
		view.PageURL = "https://" + domain.ShopDomain(shop) + "/pages/" + report.PageHandle
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := adminHomeTemplate.Execute(w, view); err != nil {
		log.Error().Err(err).Msg("Failed to render admin home")
	}
}

// parseForm accepts multipart and urlencoded bodies
func parseForm(r *http.Request) error {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return err
	}
	return nil
}

func formFromRequest(r *http.Request) domain.RegistrationForm {
	field := func(key string) string {
		return strings.TrimSpace(r.PostFormValue(key))
	}
	return domain.RegistrationForm{
		CompanyName:  field("companyName"),
		FirstName:    field("firstName"),
		LastName:     field("lastName"),
		Phone:        field("phone"),
		CompanyEmail: field("companyEmail"),
		UserEmail:    field("userEmail"),
		Location:     field("location"),
		TaxID:        field("taxId"),
	}
}
