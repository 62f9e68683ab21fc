package routes

import "github.com/labstack/echo/v4"

// Register mounts every gateway endpoint on e.
func Register(e *echo.Echo, patient *DefaultPatientRoute, appts *DefaultAppointmentRoute, bookings *DefaultBookingRoute) {
	api := e.Group("/api")

	// Patient
	api.POST("/auth/login", patient.CreateLogin)
	api.POST("/auth/logout", patient.Logout)
	api.GET("/profile", patient.GetProfile)
	api.PUT("/profile", patient.UpdateProfile)

	// Dashboard data
	api.GET("/dashboard", appts.GetDashboard)
	api.GET("/payments", appts.GetPayments)

	// Appointments
	api.GET("/appointments", appts.GetAppointments)
	api.POST("/appointments/:id/cancel", appts.CancelAppointment)
	api.GET("/appointments/:id/video", appts.GetVideoLink)

	// Booking sessions
	api.POST("/bookings", bookings.CreateBooking)
	api.GET("/bookings/latest", bookings.GetLatestBooking)
	api.GET("/bookings/:id", bookings.GetBooking)
	api.POST("/bookings/:id/payment-link", bookings.SendPaymentLink)
	api.DELETE("/bookings/:id", bookings.CloseBooking)
}
