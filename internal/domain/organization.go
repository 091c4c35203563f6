package domain

// Organization is one row of the reference dataset: a recognized NGO and its
// registered contact email. Immutable for the process lifetime.
type Organization struct {
	Name  string `json:"ngo_name"`
	Email string `json:"ngo_email"`
}
