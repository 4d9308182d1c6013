package upstream

// Organization is a hierarchical grouping entity on the identity platform.
type Organization struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Link is a hypermedia link relation returned by list endpoints.
type Link struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

// OrganizationPage is one cursor page of organizations. NextCursor is
// extracted from the "next" link relation; empty means the listing is
// exhausted.
type OrganizationPage struct {
	Organizations []Organization `json:"organizations"`
	Links         []Link         `json:"links"`
	NextCursor    string         `json:"-"`
}

// ListOrganizationsQuery narrows an organization listing.
type ListOrganizationsQuery struct {
	Filter string
	Limit  int
	After  string
}

// DiscoveryEntry is an organization already enabled for email-domain based
// self-service joining.
type DiscoveryEntry struct {
	OrganizationID   string   `json:"organizationId"`
	OrganizationName string   `json:"organizationName"`
	EmailDomains     []string `json:"domains,omitempty"`
}

// Owner is the administrator identity provisioned with a new tenant.
type Owner struct {
	Username           string `json:"username"`
	Email              string `json:"email"`
	FirstName          string `json:"firstname"`
	LastName           string `json:"lastname"`
	Password           string `json:"password"`
	ProvisioningMethod string `json:"provisioningMethod"`
}

// CreateTenantRequest is the payload for tenant creation. It is built only
// after every field validator has passed and is sent once per submit.
type CreateTenantRequest struct {
	Domain           string `json:"domain"`
	OrganizationName string `json:"organizationName"`
	Owner            Owner  `json:"owner"`
}

// Tenant is the created tenant as reported by the identity platform.
type Tenant struct {
	ID     string `json:"id"`
	Domain string `json:"domain"`
	Name   string `json:"name"`
	Status string `json:"status,omitempty"`
}

// PasswordPolicy carries the remote password constraints used by the
// generator and re-validation.
type PasswordPolicy struct {
	MinLength      int `json:"minLength"`
	MinLowercase   int `json:"minLowercase"`
	MinUppercase   int `json:"minUppercase"`
	MinDigits      int `json:"minDigits"`
	MinSpecial     int `json:"minSpecial"`
	MinUniqueChars int `json:"minUniqueChars"`
}

// ValidationSettings is the remote validation configuration snapshot. Absent
// patterns mean the corresponding rule is skipped, not failed.
type ValidationSettings struct {
	TenantDomainPattern        string         `json:"tenantDomainPattern,omitempty"`
	IllegalCharsPattern        string         `json:"illegalCharsPattern,omitempty"`
	MandatoryDotExtension      bool           `json:"mandatoryDotExtension"`
	EmailDomainsEnabled        bool           `json:"emailDomainsEnabled"`
	UserstoreValidationEnabled bool           `json:"userstoreValidationEnabled"`
	UsernamePattern            string         `json:"usernamePattern,omitempty"`
	OrgNameExclusionPattern    string         `json:"orgNameExclusionPattern,omitempty"`
	PasswordPolicy             PasswordPolicy `json:"passwordPolicy"`
}
