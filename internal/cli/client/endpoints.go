package client

import (
	"time"

	"github.com/insightd-dev/insightd/internal/cli/session"
)

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse represents a login or registration response
type AuthResponse struct {
	Token string        `json:"token"`
	User  *session.User `json:"user"`
}

// UserDetail represents a user as returned by the server
type UserDetail struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateUserRequest represents an admin user-creation request
type CreateUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type createUserResponse struct {
	User *UserDetail `json:"user"`
}

// Dashboard represents the aggregate dashboard numbers
type Dashboard struct {
	TotalRevenue    float64 `json:"total_revenue"`
	RevenueThisWeek float64 `json:"revenue_this_week"`
	SalesCount      int64   `json:"sales_count"`
	CustomerCount   int64   `json:"customer_count"`
	ActiveCustomers int64   `json:"active_customers"`
}

// Insight represents a computed analytics finding
type Insight struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Score       float64   `json:"score"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Notification represents a per-user message
type Notification struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	ReadAt    *time.Time `json:"read_at"`
	CreatedAt time.Time  `json:"created_at"`
}

type updateProfileRequest struct {
	Name string `json:"name"`
}

// Login authenticates with email and password. Unauthenticated; a 401
// means wrong credentials and is returned as a StatusError.
func (c *Client) Login(email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.doPublic("POST", "/api/v1/auth/login", LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates a new account
func (c *Client) Register(name, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.doPublic("POST", "/api/v1/auth/register", RegisterRequest{Name: name, Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me returns the currently authenticated user
func (c *Client) Me() (*UserDetail, error) {
	var user UserDetail
	if err := c.do("GET", "/api/v1/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile updates the current user's display name
func (c *Client) UpdateProfile(name string) (*UserDetail, error) {
	var user UserDetail
	if err := c.do("PUT", "/api/v1/auth/me", updateProfileRequest{Name: name}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Dashboard returns the aggregate dashboard numbers
func (c *Client) Dashboard() (*Dashboard, error) {
	var dashboard Dashboard
	if err := c.do("GET", "/api/v1/dashboard", nil, &dashboard); err != nil {
		return nil, err
	}
	return &dashboard, nil
}

// Insights returns the current computed insights
func (c *Client) Insights() ([]Insight, error) {
	var insights []Insight
	if err := c.do("GET", "/api/v1/ai/insights", nil, &insights); err != nil {
		return nil, err
	}
	return insights, nil
}

// RefreshInsights asks the server to recompute insights (admin only)
func (c *Client) RefreshInsights() error {
	return c.do("POST", "/api/v1/ai/insights/refresh", nil, nil)
}

// Notifications returns the current user's notifications
func (c *Client) Notifications() ([]Notification, error) {
	var notifications []Notification
	if err := c.do("GET", "/api/v1/notifications", nil, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkNotificationRead marks one notification as read
func (c *Client) MarkNotificationRead(id string) error {
	return c.do("POST", "/api/v1/notifications/"+id+"/read", nil, nil)
}

// ListUsers returns all users (admin only)
func (c *Client) ListUsers() ([]UserDetail, error) {
	var users []UserDetail
	if err := c.do("GET", "/api/v1/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser creates a new user (admin only)
func (c *Client) CreateUser(req CreateUserRequest) (*UserDetail, error) {
	var resp createUserResponse
	if err := c.do("POST", "/api/v1/users", req, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// DeleteUser deletes a user by ID (admin only)
func (c *Client) DeleteUser(id string) error {
	return c.do("DELETE", "/api/v1/users/"+id, nil, nil)
}
