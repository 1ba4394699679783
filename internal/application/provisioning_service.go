package application

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"wholesale-registration-app/internal/domain"
	"wholesale-registration-app/internal/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	WholesalePageTitle  = "Wholesale Registration"
	WholesalePageHandle = "quick-order"

	mainMenuHandle = "main-menu"
	mainMenuTitle  = "Main menu"
	pagesLookup    = 50
)

// Provisioning outcomes recorded for observability
const (
	ProvisioningSkipped = "skipped"
	ProvisioningExists  = "exists"
	ProvisioningCreated = "created"
	ProvisioningFailed  = "failed"
)

//go:embed templates/wholesale_page.html
var wholesalePageSource string

// Liquid uses {{ }} in the page body
var wholesalePageTemplate = template.Must(template.New("wholesale_page").Delims("[[", "]]").Parse(wholesalePageSource))

type pagesPayload struct {
	Pages struct {
		Edges []struct {
			Node domain.Page `json:"node"`
		} `json:"edges"`
	} `json:"pages"`
}

type pageCreatePayload struct {
	PageCreate *struct {
		Page       *domain.Page       `json:"page"`
		UserErrors []domain.UserError `json:"userErrors"`
	} `json:"pageCreate"`
}

type menusPayload struct {
	Menus struct {
		Edges []struct {
			Node domain.Menu `json:"node"`
		} `json:"edges"`
	} `json:"menus"`
}

type menuMutationPayload struct {
	MenuUpdate *struct {
		UserErrors []domain.UserError `json:"userErrors"`
	} `json:"menuUpdate"`
	MenuCreate *struct {
		UserErrors []domain.UserError `json:"userErrors"`
	} `json:"menuCreate"`
}

// ProvisioningService sets up the wholesale registration page and its main menu entry
type ProvisioningService struct {
	locker     ports.Locker
	lockTTL    time.Duration
	formAction string
	recorder   ports.OutcomeRecorder
	newHandle  func() string
	logger     zerolog.Logger
}

// NewProvisioningService creates a new provisioning service.
// formAction is the storefront path the generated form posts to. locker and recorder may be nil.
func NewProvisioningService(locker ports.Locker, lockTTL time.Duration, formAction string, recorder ports.OutcomeRecorder, logger zerolog.Logger) *ProvisioningService {
	return &ProvisioningService{
		locker:     locker,
		lockTTL:    lockTTL,
		formAction: formAction,
		recorder:   recorder,
		newHandle:  randomPageHandle,
		logger:     logger,
	}
}

// randomPageHandle returns "quick-order-" followed by 13 lowercase alphanumerics
func randomPageHandle() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return WholesalePageHandle + "-" + id[:13]
}

// Provision runs the best-effort setup for a shop. It never fails: every error is
// logged and reflected in the report.
func (s *ProvisioningService) Provision(ctx context.Context, shop string, client ports.AdminClient) *domain.ProvisioningReport {
	report := &domain.ProvisioningReport{Shop: shop, MenuAction: domain.MenuActionNone}
	log := s.logger.With().Str("shop", shop).Logger()

	outcome := s.provision(ctx, client, report, log)
	if s.recorder != nil {
		s.recorder.ProvisioningOutcome(outcome)
	}
	log.Info().
		Str("outcome", outcome).
		Bool("page_created", report.PageCreated).
		Str("page_handle", report.PageHandle).
		Str("menu_action", report.MenuAction).
		Msg("Provisioning finished")
	return report
}

func (s *ProvisioningService) provision(ctx context.Context, client ports.AdminClient, report *domain.ProvisioningReport, log zerolog.Logger) string {
	if s.locker != nil {
		release, ok, err := s.locker.TryLock(ctx, "provision-lock:"+report.Shop, s.lockTTL)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("Provisioning lock unavailable, continuing without it")
		case !ok:
			log.Info().Msg("Provisioning already running for shop")
			report.Skipped = true
			return ProvisioningSkipped
		default:
			defer func() {
				if err := release(context.WithoutCancel(ctx)); err != nil {
					log.Warn().Err(err).Msg("Failed to release provisioning lock")
				}
			}()
		}
	}

	existing, err := s.findPage(ctx, client)
	if err != nil {
		log.Error().Err(err).Msg("Failed to look up pages")
		return ProvisioningFailed
	}
	if existing != nil {
		report.PageExists = true
		report.PageID = existing.ID
		report.PageHandle = existing.Handle
		return ProvisioningExists
	}

	page, err := s.createPage(ctx, client)
	if err != nil {
		log.Error().Err(err).Msg("Error auto-creating page")
		return ProvisioningFailed
	}
	if page == nil || page.ID == "" {
		log.Warn().Msg("Page creation returned no page")
		return ProvisioningFailed
	}
	report.PageCreated = true
	report.PageID = page.ID
	report.PageHandle = page.Handle

	action, err := s.ensureMenuItem(ctx, client, page, log)
	report.MenuAction = action
	if err != nil {
		log.Error().Err(err).Msg("Failed to add page to main menu")
	}
	return ProvisioningCreated
}

func (s *ProvisioningService) findPage(ctx context.Context, client ports.AdminClient) (*domain.Page, error) {
	resp, err := client.GraphQL(ctx, getPagesQuery, map[string]any{"first": pagesLookup})
	if err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		return nil, &domain.GraphQLFailure{Step: "page lookup", Errors: resp.Errors}
	}
	var payload pagesPayload
	if err := resp.DecodeData(&payload); err != nil {
		return nil, err
	}
	for _, edge := range payload.Pages.Edges {
		if edge.Node.Title == WholesalePageTitle || edge.Node.Handle == WholesalePageHandle {
			page := edge.Node
			return &page, nil
		}
	}
	return nil, nil
}

// RenderPageBody renders the page body with the given form action
func RenderPageBody(formAction string) (string, error) {
	var buf bytes.Buffer
	if err := wholesalePageTemplate.Execute(&buf, struct{ FormAction string }{formAction}); err != nil {
		return "", fmt.Errorf("failed to render page body: %w", err)
	}
	return buf.String(), nil
}

func (s *ProvisioningService) createPage(ctx context.Context, client ports.AdminClient) (*domain.Page, error) {
	body, err := RenderPageBody(s.formAction)
	if err != nil {
		return nil, err
	}

	resp, err := client.GraphQL(ctx, createPageMutation, map[string]any{
		"page": map[string]any{
			"title":       WholesalePageTitle,
			"handle":      s.newHandle(),
			"body":        body,
			"isPublished": true,
		},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		return nil, &domain.GraphQLFailure{Step: "page creation", Errors: resp.Errors}
	}
	var payload pageCreatePayload
	if err := resp.DecodeData(&payload); err != nil {
		return nil, err
	}
	if p := payload.PageCreate; p != nil {
		if len(p.UserErrors) > 0 {
			return nil, &domain.RejectedError{Message: "Failed to create page", UserErrors: p.UserErrors}
		}
		return p.Page, nil
	}
	return nil, nil
}

func (s *ProvisioningService) ensureMenuItem(ctx context.Context, client ports.AdminClient, page *domain.Page, log zerolog.Logger) (string, error) {
	menu, err := s.findMainMenu(ctx, client)
	if err != nil {
		return domain.MenuActionFailed, err
	}

	pageURL := "/pages/" + page.Handle
	// titled like the page on both the create and update paths (not "Custom Menu Page")
	// so the existing-item check below finds it on later runs
	pageItem := domain.MenuItem{
		Title:      WholesalePageTitle,
		Type:       "PAGE",
		ResourceID: &page.ID,
		URL:        &pageURL,
	}

	if menu == nil {
		log.Info().Msg("Main menu not found, creating new main menu")
		home := "/"
		items := []domain.MenuItem{{Title: "Home", Type: "FRONTPAGE", URL: &home}, pageItem}
		if err := s.writeMenu(ctx, client, createMenuMutation, "menu creation", map[string]any{
			"title":  mainMenuTitle,
			"handle": mainMenuHandle,
			"items":  items,
		}); err != nil {
			return domain.MenuActionFailed, err
		}
		return domain.MenuActionCreated, nil
	}

	log.Debug().Str("menu_id", menu.ID).Str("menu_handle", menu.Handle).Msg("Main menu found")
	for _, item := range menu.Items {
		if item.Title == WholesalePageTitle {
			return domain.MenuActionUnchanged, nil
		}
	}

	items := make([]domain.MenuItem, 0, len(menu.Items)+1)
	items = append(items, menu.Items...)
	items = append(items, pageItem)
	if err := s.writeMenu(ctx, client, updateMenuMutation, "menu update", map[string]any{
		"id":     menu.ID,
		"title":  menu.Title,
		"handle": menu.Handle,
		"items":  items,
	}); err != nil {
		return domain.MenuActionFailed, err
	}
	return domain.MenuActionUpdated, nil
}

func (s *ProvisioningService) findMainMenu(ctx context.Context, client ports.AdminClient) (*domain.Menu, error) {
	resp, err := client.GraphQL(ctx, getMainMenuQuery, nil)
	if err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		return nil, &domain.GraphQLFailure{Step: "menu lookup", Errors: resp.Errors}
	}
	var payload menusPayload
	if err := resp.DecodeData(&payload); err != nil {
		return nil, err
	}
	for _, edge := range payload.Menus.Edges {
		if edge.Node.Handle == mainMenuHandle || edge.Node.Title == mainMenuTitle {
			menu := edge.Node
			return &menu, nil
		}
	}
	return nil, nil
}

func (s *ProvisioningService) writeMenu(ctx context.Context, client ports.AdminClient, mutation, step string, variables map[string]any) error {
	resp, err := client.GraphQL(ctx, mutation, variables)
	if err != nil {
		return err
	}
	if len(resp.Errors) > 0 {
		return &domain.GraphQLFailure{Step: step, Errors: resp.Errors}
	}
	var payload menuMutationPayload
	if err := resp.DecodeData(&payload); err != nil {
		return err
	}
	var userErrors []domain.UserError
	if payload.MenuUpdate != nil {
		userErrors = payload.MenuUpdate.UserErrors
	}
	if payload.MenuCreate != nil {
		userErrors = append(userErrors, payload.MenuCreate.UserErrors...)
	}
	if len(userErrors) > 0 {
		return &domain.RejectedError{Message: "Failed " + step, UserErrors: userErrors}
	}
	return nil
}
