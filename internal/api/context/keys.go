package context

type Key string

const (
	User           Key = "user"
	Params         Key = "params"
	OrganizationID Key = "organization_id"
	RequestID      Key = "request_id"
)
