package http

import (
	"net/http"

	"service-marketplace/internal/delivery/http/handler"
	"service-marketplace/internal/delivery/http/middleware"
	"service-marketplace/pkg/response"

	"github.com/gorilla/mux"
)

// uuidPath keeps /{id} from shadowing named routes such as /profile.
const uuidPath = "/{id:[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}}"

type Router struct {
	router          *mux.Router
	authHandler     *handler.AuthHandler
	userHandler     *handler.UserHandler
	providerHandler *handler.ProviderHandler
	serviceHandler  *handler.ServiceHandler
	bookingHandler  *handler.BookingHandler
	auditLogHandler *handler.AuditLogHandler
	authMiddleware  *middleware.AuthMiddleware
	corsMiddleware  *middleware.CORSMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	providerHandler *handler.ProviderHandler,
	serviceHandler *handler.ServiceHandler,
	bookingHandler *handler.BookingHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:          mux.NewRouter(),
		authHandler:     authHandler,
		userHandler:     userHandler,
		providerHandler: providerHandler,
		serviceHandler:  serviceHandler,
		bookingHandler:  bookingHandler,
		auditLogHandler: auditLogHandler,
		authMiddleware:  authMiddleware,
		corsMiddleware:  corsMiddleware,
	}
}

func only(role func(http.Handler) http.Handler, h http.HandlerFunc) http.Handler {
	return role(h)
}

func (r *Router) Setup() *mux.Router {
	api := r.router.PathPrefix("/api").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// User routes (public)
	users := api.PathPrefix("/users").Subrouter()
	users.HandleFunc("/register", r.authHandler.Register).Methods(http.MethodPost)
	users.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	users.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// User routes (protected)
	usersProtected := api.PathPrefix("/users").Subrouter()
	usersProtected.Use(r.authMiddleware.Authenticate)
	usersProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	usersProtected.HandleFunc("/profile", r.userHandler.GetProfile).Methods(http.MethodGet)
	usersProtected.HandleFunc("/profile", r.userHandler.UpdateProfile).Methods(http.MethodPut)
	usersProtected.HandleFunc("/notifications", r.userHandler.UpdateNotificationPreferences).Methods(http.MethodPut)
	usersProtected.HandleFunc("/favorites"+uuidPath, r.userHandler.AddFavoriteProvider).Methods(http.MethodPost)
	usersProtected.HandleFunc("/favorites"+uuidPath, r.userHandler.RemoveFavoriteProvider).Methods(http.MethodDelete)

	// Provider routes (public)
	providers := api.PathPrefix("/providers").Subrouter()
	providers.HandleFunc("", r.providerHandler.GetProviders).Methods(http.MethodGet)
	providers.HandleFunc("/", r.providerHandler.GetProviders).Methods(http.MethodGet)
	providers.HandleFunc(uuidPath, r.providerHandler.GetProvider).Methods(http.MethodGet)

	// Provider routes (protected)
	providersProtected := api.PathPrefix("/providers").Subrouter()
	providersProtected.Use(r.authMiddleware.Authenticate)
	providersProtected.Handle("", only(middleware.RequireCustomer, r.providerHandler.CreateProvider)).Methods(http.MethodPost)
	providersProtected.Handle("/", only(middleware.RequireCustomer, r.providerHandler.CreateProvider)).Methods(http.MethodPost)
	providersProtected.Handle(uuidPath+"/reviews", only(middleware.RequireCustomer, r.providerHandler.AddReview)).Methods(http.MethodPost)
	providersProtected.Handle("/profile", only(middleware.RequireProvider, r.providerHandler.GetProfile)).Methods(http.MethodGet)
	providersProtected.Handle("/profile", only(middleware.RequireProvider, r.providerHandler.UpdateProfile)).Methods(http.MethodPut)
	providersProtected.Handle("/notifications", only(middleware.RequireProvider, r.providerHandler.UpdateNotificationPreferences)).Methods(http.MethodPut)
	providersProtected.Handle("/subscription", only(middleware.RequireProvider, r.providerHandler.GetSubscription)).Methods(http.MethodGet)
	providersProtected.Handle("/stats", only(middleware.RequireProvider, r.providerHandler.GetStats)).Methods(http.MethodGet)

	// Service routes (public)
	services := api.PathPrefix("/services").Subrouter()
	services.HandleFunc("", r.serviceHandler.GetServices).Methods(http.MethodGet)
	services.HandleFunc("/", r.serviceHandler.GetServices).Methods(http.MethodGet)
	services.HandleFunc(uuidPath, r.serviceHandler.GetService).Methods(http.MethodGet)

	// Service routes (provider only)
	servicesProtected := api.PathPrefix("/services").Subrouter()
	servicesProtected.Use(r.authMiddleware.Authenticate)
	servicesProtected.Use(middleware.RequireProvider)
	servicesProtected.HandleFunc("", r.serviceHandler.CreateService).Methods(http.MethodPost)
	servicesProtected.HandleFunc("/", r.serviceHandler.CreateService).Methods(http.MethodPost)
	servicesProtected.HandleFunc("/provider/services", r.serviceHandler.GetProviderServices).Methods(http.MethodGet)
	servicesProtected.HandleFunc(uuidPath, r.serviceHandler.UpdateService).Methods(http.MethodPut)
	servicesProtected.HandleFunc(uuidPath, r.serviceHandler.DeleteService).Methods(http.MethodDelete)

	// Booking routes (protected); ownership is checked per booking
	bookings := api.PathPrefix("/bookings").Subrouter()
	bookings.Use(r.authMiddleware.Authenticate)
	bookings.Handle("", only(middleware.RequireCustomer, r.bookingHandler.CreateBooking)).Methods(http.MethodPost)
	bookings.Handle("/", only(middleware.RequireCustomer, r.bookingHandler.CreateBooking)).Methods(http.MethodPost)
	bookings.Handle("", only(middleware.RequireAdmin, r.bookingHandler.GetAllBookings)).Methods(http.MethodGet)
	bookings.Handle("/", only(middleware.RequireAdmin, r.bookingHandler.GetAllBookings)).Methods(http.MethodGet)
	bookings.Handle("/customer/bookings", only(middleware.RequireCustomer, r.bookingHandler.GetCustomerBookings)).Methods(http.MethodGet)
	bookings.Handle("/provider/bookings", only(middleware.RequireProvider, r.bookingHandler.GetProviderBookings)).Methods(http.MethodGet)
	bookings.Handle("/provider/urgent", only(middleware.RequireProvider, r.bookingHandler.GetUrgentRequests)).Methods(http.MethodGet)
	bookings.HandleFunc(uuidPath, r.bookingHandler.GetBooking).Methods(http.MethodGet)
	bookings.HandleFunc(uuidPath, r.bookingHandler.UpdateBookingStatus).Methods(http.MethodPut)
	bookings.HandleFunc(uuidPath, r.bookingHandler.DeleteBooking).Methods(http.MethodDelete)
	bookings.HandleFunc(uuidPath+"/accept", r.bookingHandler.AcceptBooking).Methods(http.MethodPut)
	bookings.HandleFunc(uuidPath+"/decline", r.bookingHandler.DeclineBooking).Methods(http.MethodPut)
	bookings.HandleFunc(uuidPath+"/complete", r.bookingHandler.CompleteBooking).Methods(http.MethodPut)
	bookings.HandleFunc(uuidPath+"/cancel", r.bookingHandler.CancelBooking).Methods(http.MethodPut)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id:[0-9]+}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)
	admin.HandleFunc("/bookings"+uuidPath+"/history", r.auditLogHandler.GetBookingHistory).Methods(http.MethodGet)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	response.Success(w, http.StatusOK, response.Payload{"status": "ok"})
}
