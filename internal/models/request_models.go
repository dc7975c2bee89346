package models

// CreateUserRequest is the body of POST /users, sent by the client after a Firebase sign-in.
type CreateUserRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
	PhotoURL    string `json:"photoURL,omitempty"`
}

// UpdatePremiumRequest is the body of PATCH /users/:id. Only status "premium" grants premium.
type UpdatePremiumRequest struct {
	Status string `json:"status"`
}

// UpdateRoleRequest is the body of PATCH /users/:id/role.
type UpdateRoleRequest struct {
	Role Role `json:"role"`
}

// CreateLessonRequest is the body of POST /lessons.
type CreateLessonRequest struct {
	Title         string        `json:"title"`
	Description   string        `json:"description,omitempty"`
	Category      string        `json:"category,omitempty"`
	EmotionalTone string        `json:"emotionalTone,omitempty"`
	Image         string        `json:"image,omitempty"`
	Privacy       string        `json:"privacy,omitempty"`
	AccessLevel   string        `json:"accessLevel,omitempty"`
	User          *LessonAuthor `json:"user"`
}

// LikeLessonRequest is the body of POST /lessons/:id/likes.
type LikeLessonRequest struct {
	User string `json:"user"`
}

// CreateReportRequest is the body of POST /reports/:id.
type CreateReportRequest struct {
	ReporterEmail string `json:"reporterEmail"`
	Reason        string `json:"reason,omitempty"`
}

// CheckoutRequest is the body of POST /create-checkout-session.
type CheckoutRequest struct {
	Email string `json:"email"`
}
