package application

// Admin GraphQL documents. Field and mutation names are contracts with the
// Shopify Admin schema.

const createCompanyMutation = `mutation CreateCompany($input: CompanyCreateInput!) {
  companyCreate(input: $input) {
    company {
      id
      name
    }
    userErrors {
      field
      message
    }
  }
}`

const createCustomerMutation = `mutation CreateCustomer($input: CustomerInput!) {
  customerCreate(input: $input) {
    customer {
      id
      email
      firstName
      lastName
    }
    userErrors {
      field
      message
    }
  }
}`

const assignMainContactMutation = `mutation AssignMainContact($companyId: ID!, $customerId: ID!) {
  companyAssignMainContact(companyId: $companyId, customerId: $customerId) {
    company {
      id
      mainContact {
        id
        firstName
        lastName
      }
    }
    userErrors {
      field
      message
    }
  }
}`

const getPagesQuery = `query GetPages($first: Int!) {
  pages(first: $first) {
    edges {
      node {
        id
        title
        handle
      }
    }
  }
}`

const createPageMutation = `mutation CreatePage($page: PageCreateInput!) {
  pageCreate(page: $page) {
    page {
      id
      title
      handle
    }
    userErrors {
      code
      field
      message
    }
  }
}`

const getMainMenuQuery = `query GetMainMenu {
  menus(first: 10) {
    edges {
      node {
        id
        handle
        title
        items {
          id
          title
          type
          url
          resourceId
        }
      }
    }
  }
}`

const updateMenuMutation = `mutation UpdateMenu($id: ID!, $title: String!, $handle: String!, $items: [MenuItemUpdateInput!]!) {
  menuUpdate(id: $id, title: $title, handle: $handle, items: $items) {
    menu {
      id
      handle
      items {
        id
        title
      }
    }
    userErrors {
      code
      field
      message
    }
  }
}`

const createMenuMutation = `mutation CreateMenu($title: String!, $handle: String!, $items: [MenuItemCreateInput!]!) {
  menuCreate(title: $title, handle: $handle, items: $items) {
    menu {
      id
      handle
      items {
        id
        title
      }
    }
    userErrors {
      code
      field
      message
    }
  }
}`

// Documents returns every Admin document keyed by its expected operation name
func Documents() map[string]string {
	return map[string]string{
		"CreateCompany":     createCompanyMutation,
		"CreateCustomer":    createCustomerMutation,
		"AssignMainContact": assignMainContactMutation,
		"GetPages":          getPagesQuery,
		"CreatePage":        createPageMutation,
		"GetMainMenu":       getMainMenuQuery,
		"UpdateMenu":        updateMenuMutation,
		"CreateMenu":        createMenuMutation,
	}
}
