package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wb-go/wbf/ginext"

	authhandler "github.com/temirbekov/assistant-backend/internal/api/handlers/auth"
	"github.com/temirbekov/assistant-backend/internal/api/handlers/confirmations"
	"github.com/temirbekov/assistant-backend/internal/api/handlers/due"
	"github.com/temirbekov/assistant-backend/internal/api/handlers/messages"
	"github.com/temirbekov/assistant-backend/internal/api/handlers/profile"
	"github.com/temirbekov/assistant-backend/internal/api/handlers/records"
	"github.com/temirbekov/assistant-backend/internal/model"
)

// Handlers bundles every handler the router mounts.
type Handlers struct {
	Auth          *authhandler.Handler
	Profile       *profile.Handler
	Records       *records.Handler
	Messages      *messages.Handler
	Confirmations *confirmations.Handler
	Due           *due.Handler
}

// New builds the HTTP engine. Route paths are kept exactly as the
// automation flows call them: auth and the scheduler endpoints are
// public, the service endpoints that key on a WhatsApp number stay
// open for the automation, and everything owner-scoped sits behind
// the bearer middleware.
func New(h Handlers, auth ginext.HandlerFunc) *ginext.Engine {
	e := ginext.New()
	e.Use(ginext.Logger())
	e.Use(ginext.Recovery())

	e.GET("/health", func(c *ginext.Context) {
		c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", func(c *ginext.Context) {
		promhttp.Handler().ServeHTTP(c.Writer, c.Request)
	})

	api := e.Group("/api")
	{
		// Public identity flows.
		api.POST("/signup", h.Auth.SignUp)
		api.POST("/verifyOtp", h.Auth.VerifyOTP)
		api.POST("/resendOtp", h.Auth.ResendOTP)
		api.POST("/login", h.Auth.Login)
		api.POST("/logout", h.Auth.Logout)

		// Service endpoints the automation calls with a WhatsApp
		// number in the body.
		api.POST("/getuserbywhatsapp", h.Profile.ByWhatsApp)
		api.GET("/active-users", h.Profile.ListActive)
		api.POST("/createproject", h.Records.Create(model.CategoryProjects))
		api.POST("/createtask", h.Records.Create(model.CategoryTasks))
		api.POST("/createpayments", h.Records.Create(model.CategoryPayments))
		api.POST("/createreminders", h.Records.Create(model.CategoryReminders))
		api.POST("/createtempmessages", h.Messages.CreateTemp)
		api.GET("/gettempmessages", h.Messages.GetTemp)
		api.DELETE("/deletetempmessages", h.Messages.DeleteTemp)

		// Scheduler endpoints.
		api.GET("/getduereminders", h.Due.GetDueReminders)
		api.GET("/get24hitem", h.Due.Get24hItems)
		api.DELETE("/deleteduerows", h.Due.DeleteDueRows)

		// Owner-scoped endpoints.
		authed := api.Group("/")
		authed.Use(auth)
		{
			authed.GET("/profile", h.Profile.Get)
			authed.GET("/content/all", h.Profile.AllContent)
			authed.POST("/plan/activate", h.Profile.ActivatePlan)
			authed.GET("/plan/check", h.Profile.CheckActivePlan)

			authed.GET("/projects", h.Records.List(model.CategoryProjects))
			authed.DELETE("/projects/:projectId", h.Records.Delete(model.CategoryProjects, "projectId"))
			authed.PUT("/projects/status", h.Records.UpdateProjectStatus)

			authed.GET("/tasks", h.Records.List(model.CategoryTasks))
			authed.DELETE("/tasks/:taskId", h.Records.Delete(model.CategoryTasks, "taskId"))

			authed.GET("/payments", h.Records.List(model.CategoryPayments))
			authed.DELETE("/payments/:paymentId", h.Records.Delete(model.CategoryPayments, "paymentId"))
			authed.PUT("/payments/mark-paid", h.Records.MarkPaymentPaid)
			authed.GET("/payments/due", h.Records.DuePayments)

			authed.GET("/reminders", h.Records.List(model.CategoryReminders))
			authed.DELETE("/reminders/:id", h.Records.Delete(model.CategoryReminders, "id"))
			authed.PUT("/reminders/cancel-related", h.Records.CancelRelatedReminders)

			authed.POST("/messages", h.Messages.CreateMessage)
			authed.GET("/messages", h.Messages.GetMessages)
			authed.DELETE("/messages", h.Messages.DeleteMessages)

			authed.POST("/confirmations", h.Confirmations.Create)
			authed.GET("/getconfirmation", h.Confirmations.GetPending)
			authed.DELETE("/confirmations/:id", h.Confirmations.Delete)
		}
	}

	return e
}
