package http

import (
	"embed"
	"html/template"
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"tradehook/internal/domain"
	"tradehook/internal/middleware"
	"tradehook/internal/usecase"
)

//go:embed templates/*.html
var templateFS embed.FS

// WebHandler renders the server-side HTML pages: login, dashboard and the
// settings form.
type WebHandler struct {
	templates *template.Template
	userRepo  domain.UserRepository
	reporting *usecase.ReportingService
	settings  *usecase.SettingsService
}

// NewWebHandler creates a new WebHandler with the embedded templates.
func NewWebHandler(
	userRepo domain.UserRepository,
	reporting *usecase.ReportingService,
	settings *usecase.SettingsService,
) (*WebHandler, error) {
	// fval/sval unwrap optional fields for printf; templates cannot
	// dereference pointers themselves.
	funcs := template.FuncMap{
		"fval": func(f *float64) float64 {
			if f == nil {
				return 0
			}
			return *f
		},
		"sval": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	}

	templates, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &WebHandler{
		templates: templates,
		userRepo:  userRepo,
		reporting: reporting,
		settings:  settings,
	}, nil
}

// HandleIndex redirects to the dashboard or the login page.
// GET /
func (h *WebHandler) HandleIndex(c echo.Context) error {
	cookie, err := c.Cookie("token")
	if err != nil || cookie.Value == "" {
		return c.Redirect(http.StatusFound, "/login")
	}
	return c.Redirect(http.StatusFound, "/dashboard")
}

// HandleLogin renders the login page.
// GET /login
func (h *WebHandler) HandleLogin(c echo.Context) error {
	cookie, err := c.Cookie("token")
	if err == nil && cookie.Value != "" {
		return c.Redirect(http.StatusFound, "/dashboard")
	}

	data := map[string]interface{}{
		"Error": c.QueryParam("error"),
	}
	return h.templates.ExecuteTemplate(c.Response().Writer, "login", data)
}

// HandleLoginPost handles the login form submission.
// POST /login
func (h *WebHandler) HandleLoginPost(c echo.Context) error {
	username := c.FormValue("username")
	password := c.FormValue("password")
	if username == "" || password == "" {
		return c.Redirect(http.StatusFound, "/login?error=Username+and+password+are+required")
	}

	user, err := h.userRepo.GetByUsername(c.Request().Context(), username)
	if err != nil {
		return c.Redirect(http.StatusFound, "/login?error=Invalid+credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return c.Redirect(http.StatusFound, "/login?error=Invalid+credentials")
	}

	token, err := middleware.GenerateJWT(user.ID, user.Role)
	if err != nil {
		return c.Redirect(http.StatusFound, "/login?error=Failed+to+generate+token")
	}

	setSessionCookie(c, token)
	return c.Redirect(http.StatusFound, "/dashboard")
}

// HandleLogout clears the session and returns to the login page.
// GET /logout
func (h *WebHandler) HandleLogout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	return c.Redirect(http.StatusFound, "/login")
}

// HandleDashboard renders the dashboard: recent trades, open positions,
// analytics and the exchange connection state.
// GET /dashboard
func (h *WebHandler) HandleDashboard(c echo.Context) error {
	ctx := c.Request().Context()

	trades, err := h.reporting.RecentTrades(ctx, 20)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to load trades", err)
	}

	overview, err := h.reporting.Positions(ctx)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to load positions", err)
	}

	analytics, err := h.reporting.Analytics(ctx)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to load analytics", err)
	}

	// Best effort: the dashboard renders without a balance when the
	// exchange is unreachable or not configured.
	var balance *float64
	if b, err := h.reporting.Balance(ctx); err == nil {
		balance = &b
	}

	status := h.reporting.TestConnection(ctx)

	data := map[string]interface{}{
		"Trades":    trades,
		"Ledger":    overview.Ledger,
		"Live":      overview.Live,
		"Analytics": analytics,
		"Balance":   balance,
		"Status":    status,
	}
	return h.templates.ExecuteTemplate(c.Response().Writer, "dashboard", data)
}

// HandleSettings renders the settings form.
// GET /settings
func (h *WebHandler) HandleSettings(c echo.Context) error {
	settings, err := h.settings.Get(c.Request().Context())
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to load settings", err)
	}

	data := map[string]interface{}{
		"Settings":  settings,
		"MaskedKey": settings.MaskedAPIKey(),
		"Error":     c.QueryParam("error"),
		"Message":   c.QueryParam("message"),
	}
	return h.templates.ExecuteTemplate(c.Response().Writer, "settings", data)
}

// HandleSettingsPost handles the settings form submission.
// POST /settings
func (h *WebHandler) HandleSettingsPost(c echo.Context) error {
	input := usecase.UpdateSettingsInput{
		APIKey:            c.FormValue("api_key"),
		APISecret:         c.FormValue("api_secret"),
		Testnet:           c.FormValue("testnet") == "on",
		DefaultQuantity:   formFloat(c, "default_quantity"),
		MaxPositionSize:   formFloat(c, "max_position_size"),
		RiskPercentage:    formFloat(c, "risk_percentage"),
		Leverage:          formInt(c, "leverage"),
		StopLossPercent:   formFloat(c, "stop_loss_percent"),
		TakeProfitPercent: formFloat(c, "take_profit_percent"),
		IsActive:          c.FormValue("is_active") == "on",
	}

	if _, err := h.settings.Update(c.Request().Context(), input); err != nil {
		log.Printf("ERROR: settings update failed: %v", err)
		return c.Redirect(http.StatusFound, "/settings?error="+template.URLQueryEscaper(err.Error()))
	}
	return c.Redirect(http.StatusFound, "/settings?message=Settings+saved")
}

// RegisterWebRoutes registers all web routes (HTML pages)
func RegisterWebRoutes(e *echo.Echo, handler *WebHandler, authMiddleware echo.MiddlewareFunc) {
	e.GET("/", handler.HandleIndex)
	e.GET("/login", handler.HandleLogin)
	e.POST("/login", handler.HandleLoginPost)
	e.GET("/logout", handler.HandleLogout)
	e.GET("/dashboard", handler.HandleDashboard, authMiddleware)
	e.GET("/settings", handler.HandleSettings, authMiddleware)
	e.POST("/settings", handler.HandleSettingsPost, authMiddleware)
}

func formFloat(c echo.Context, name string) float64 {
	v, _ := strconv.ParseFloat(c.FormValue(name), 64)
	return v
}

func formInt(c echo.Context, name string) int {
	v, _ := strconv.Atoi(c.FormValue(name))
	return v
}
