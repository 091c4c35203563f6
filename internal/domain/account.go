package domain

// Account is the transient view of an identity-provider user. The provider is
// the system of record; nothing here is persisted locally.
type Account struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}
