package domain

// RegistrationForm is the wholesale registration form submitted from the storefront
type RegistrationForm struct {
	CompanyName  string `json:"companyName"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Phone        string `json:"phone"`
	CompanyEmail string `json:"companyEmail"`
	UserEmail    string `json:"userEmail"`
	Location     string `json:"location"`
	TaxID        string `json:"taxId"`
}

// Company is the B2B company created for a registration
type Company struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ExternalID string `json:"externalId,omitempty"`
	Note       string `json:"note,omitempty"`
}

// Customer is the storefront customer created for a registration
type Customer struct {
	ID        string `json:"id"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// RegistrationResult is returned once the workflow ran to completion.
// Either ID may be empty: the workflow reports success with whatever it obtained.
type RegistrationResult struct {
	Success    bool   `json:"success"`
	CompanyID  string `json:"companyId,omitempty"`
	CustomerID string `json:"customerId,omitempty"`
	Message    string `json:"message,omitempty"`
	Assigned   bool   `json:"-"`
}
