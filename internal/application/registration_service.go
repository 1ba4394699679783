package application

import (
	"context"
	"fmt"
	"time"

	"wholesale-registration-app/internal/domain"
	"wholesale-registration-app/internal/ports"

	"github.com/rs/zerolog"
)

const (
	// ProxyRegistrationNote is attached to companies created from the storefront form
	ProxyRegistrationNote = "Created from Wholesale Registration form"
	// AdminRegistrationNote is attached to companies created from the embedded admin
	AdminRegistrationNote = "Created from Quick Order form"

	registrationSuccessMessage = "Company and customer created successfully!"
)

// Registration outcomes recorded for observability
const (
	RegistrationSucceeded  = "success"
	RegistrationIncomplete = "incomplete"
	RegistrationRejected   = "rejected"
	RegistrationGraphQL    = "graphql_error"
	RegistrationFailed     = "error"
)

type companyCreateInput struct {
	Company        companyInput         `json:"company"`
	CompanyContact *companyContactInput `json:"companyContact,omitempty"`
}

type companyInput struct {
	Name       string `json:"name"`
	ExternalID string `json:"externalId"`
	Note       string `json:"note,omitempty"`
}

type companyContactInput struct {
	Email     string `json:"email,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

type customerInput struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type companyCreatePayload struct {
	CompanyCreate *struct {
		Company    *domain.Company    `json:"company"`
		UserErrors []domain.UserError `json:"userErrors"`
	} `json:"companyCreate"`
}

type customerCreatePayload struct {
	CustomerCreate *struct {
		Customer   *domain.Customer   `json:"customer"`
		UserErrors []domain.UserError `json:"userErrors"`
	} `json:"customerCreate"`
}

type assignMainContactPayload struct {
	CompanyAssignMainContact *struct {
		UserErrors []domain.UserError `json:"userErrors"`
	} `json:"companyAssignMainContact"`
}

// RegistrationService creates a company, a customer and links them as main contact
type RegistrationService struct {
	recorder ports.OutcomeRecorder
	now      func() time.Time
	logger   zerolog.Logger
}

// NewRegistrationService creates a new registration service. recorder may be nil.
func NewRegistrationService(recorder ports.OutcomeRecorder, logger zerolog.Logger) *RegistrationService {
	return &RegistrationService{
		recorder: recorder,
		now:      time.Now,
		logger:   logger,
	}
}

// Register runs the registration workflow against the shop behind client.
// Stopping failures are returned as *domain.GraphQLFailure, *domain.RejectedError
// or a wrapped transport error.
func (s *RegistrationService) Register(ctx context.Context, client ports.AdminClient, form domain.RegistrationForm, note string) (*domain.RegistrationResult, error) {
	result, outcome, err := s.register(ctx, client, form, note)
	if s.recorder != nil {
		s.recorder.RegistrationOutcome(outcome)
	}
	return result, err
}

func (s *RegistrationService) register(ctx context.Context, client ports.AdminClient, form domain.RegistrationForm, note string) (*domain.RegistrationResult, string, error) {
	s.logger.Info().
		Str("company", form.CompanyName).
		Str("location", form.Location).
		Str("tax_id", form.TaxID).
		Str("company_email", form.CompanyEmail).
		Msg("Registration received")

	companyID, outcome, err := s.createCompany(ctx, client, form, note)
	if err != nil {
		return nil, outcome, err
	}

	customerID, outcome, err := s.createCustomer(ctx, client, form)
	if err != nil {
		return nil, outcome, err
	}

	result := &domain.RegistrationResult{
		Success:    true,
		CompanyID:  companyID,
		CustomerID: customerID,
		Message:    registrationSuccessMessage,
	}

	if companyID == "" || customerID == "" {
		s.logger.Warn().
			Str("company_id", companyID).
			Str("customer_id", customerID).
			Msg("Skipping assignment - missing IDs")
		return result, RegistrationIncomplete, nil
	}

	outcome, err = s.assignMainContact(ctx, client, companyID, customerID)
	if err != nil {
		return nil, outcome, err
	}
	result.Assigned = true

	s.logger.Info().
		Str("company_id", companyID).
		Str("customer_id", customerID).
		Msg("Successfully created company and customer")
	return result, RegistrationSucceeded, nil
}

func (s *RegistrationService) createCompany(ctx context.Context, client ports.AdminClient, form domain.RegistrationForm, note string) (string, string, error) {
	input := companyCreateInput{
		Company: companyInput{
			Name:       form.CompanyName,
			ExternalID: fmt.Sprintf("ext-%d", s.now().UnixMilli()),
			Note:       note,
		},
		CompanyContact: &companyContactInput{
			Email:     form.UserEmail,
			FirstName: form.FirstName,
			LastName:  form.LastName,
		},
	}

	resp, err := client.GraphQL(ctx, createCompanyMutation, map[string]any{"input": input})
	if err != nil {
		return "", RegistrationFailed, fmt.Errorf("failed to create company: %w", err)
	}
	if len(resp.Errors) > 0 {
		s.logger.Error().Interface("errors", resp.Errors).Msg("GraphQL errors in company creation")
		return "", RegistrationGraphQL, &domain.GraphQLFailure{Step: "company creation", Errors: resp.Errors}
	}

	var payload companyCreatePayload
	if err := resp.DecodeData(&payload); err != nil {
		return "", RegistrationFailed, err
	}
	if p := payload.CompanyCreate; p != nil && len(p.UserErrors) > 0 {
		s.logger.Error().Interface("user_errors", p.UserErrors).Msg("Company creation errors")
		return "", RegistrationRejected, &domain.RejectedError{
			Kind:       domain.CompanyCreateRejected,
			Message:    "Failed to create company",
			UserErrors: p.UserErrors,
		}
	}

	var companyID string
	if p := payload.CompanyCreate; p != nil && p.Company != nil {
		companyID = p.Company.ID
	}
	if companyID == "" {
		// tolerated: the workflow continues and the assignment is skipped
		s.logger.Warn().Msg("Company creation returned no company id")
	}
	s.logger.Info().Str("company_id", companyID).Msg("Created company")
	return companyID, "", nil
}

func (s *RegistrationService) createCustomer(ctx context.Context, client ports.AdminClient, form domain.RegistrationForm) (string, string, error) {
	input := customerInput{
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Email:     form.UserEmail,
		Phone:     form.Phone,
	}

	resp, err := client.GraphQL(ctx, createCustomerMutation, map[string]any{"input": input})
	if err != nil {
		return "", RegistrationFailed, fmt.Errorf("failed to create customer: %w", err)
	}
	if len(resp.Errors) > 0 {
		s.logger.Error().Interface("errors", resp.Errors).Msg("GraphQL errors in customer creation")
		return "", RegistrationGraphQL, &domain.GraphQLFailure{Step: "customer creation", Errors: resp.Errors}
	}

	var payload customerCreatePayload
	if err := resp.DecodeData(&payload); err != nil {
		return "", RegistrationFailed, err
	}
	if p := payload.CustomerCreate; p != nil && len(p.UserErrors) > 0 {
		s.logger.Error().Interface("user_errors", p.UserErrors).Msg("Customer creation errors")
		return "", RegistrationRejected, &domain.RejectedError{
			Kind:       domain.CustomerCreateRejected,
			Message:    "Failed to create customer",
			UserErrors: p.UserErrors,
		}
	}

	var customerID string
	if p := payload.CustomerCreate; p != nil && p.Customer != nil {
		customerID = p.Customer.ID
	}
	s.logger.Info().Str("customer_id", customerID).Msg("Created customer")
	return customerID, "", nil
}

func (s *RegistrationService) assignMainContact(ctx context.Context, client ports.AdminClient, companyID, customerID string) (string, error) {
	resp, err := client.GraphQL(ctx, assignMainContactMutation, map[string]any{
		"companyId":  companyID,
		"customerId": customerID,
	})
	if err != nil {
		return RegistrationFailed, fmt.Errorf("failed to assign main contact: %w", err)
	}
	if len(resp.Errors) > 0 {
		// does not stop the workflow
		s.logger.Error().Interface("errors", resp.Errors).Msg("GraphQL errors in assignment")
	}

	var payload assignMainContactPayload
	if err := resp.DecodeData(&payload); err != nil {
		return RegistrationFailed, err
	}
	if p := payload.CompanyAssignMainContact; p != nil && len(p.UserErrors) > 0 {
		s.logger.Error().Interface("user_errors", p.UserErrors).Msg("Assignment errors")
		return RegistrationRejected, &domain.RejectedError{
			Kind:       domain.AssignmentRejected,
			Message:    "Failed to assign main contact",
			UserErrors: p.UserErrors,
		}
	}
	return "", nil
}
