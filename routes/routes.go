package routes

import (
	"github.com/gin-gonic/gin"

	config "github.com/sriram/festival-backend-go/config"
	controllers "github.com/sriram/festival-backend-go/controllers"
	middleware "github.com/sriram/festival-backend-go/middleware"
)

func SetupRoutes(r *gin.Engine, cfg *config.Config) {
	// public
	r.POST("/auth/register", controllers.Register(cfg))
	r.POST("/auth/login", controllers.Login(cfg))
	r.POST("/admin/accept-invite", controllers.AcceptAdminInvite(cfg))

	r.GET("/events", controllers.ListEvents(cfg))
	r.GET("/events/:id", controllers.GetEvent(cfg))
	r.GET("/events/:id/winners", controllers.GetWinners(cfg))

	// protected
	auth := middleware.AuthMiddleware(cfg)

	me := r.Group("/me")
	me.Use(auth)
	{
		me.GET("", controllers.Me(cfg))
		me.GET("/college-registrations", controllers.CollegeRegistrations(cfg))
	}

	reg := r.Group("/events")
	reg.Use(auth)
	{
		reg.POST("/:id/register", controllers.RegisterSolo(cfg))
		reg.POST("/:id/teams", controllers.CreateTeam(cfg))
	}

	registrations := r.Group("/registrations")
	registrations.Use(auth)
	{
		registrations.POST("", controllers.RegisterDirect(cfg))
		registrations.PATCH("/:id", controllers.UpdateSoloRegistration(cfg))
	}

	teams := r.Group("/teams")
	teams.Use(auth)
	{
		teams.PATCH("/:teamId/members/:memberId", controllers.UpdateTeamMember(cfg))
	}

	// admin-only
	admin := r.Group("/admin")
	admin.Use(auth, middleware.AdminOnly())
	{
		admin.POST("/events", controllers.CreateEvent(cfg))
		admin.PATCH("/events/:id", controllers.UpdateEvent(cfg))
		admin.POST("/events/:id/archive", controllers.ArchiveEvent(cfg))
		admin.DELETE("/events/:id", controllers.DeleteEvent(cfg))

		admin.GET("/events/:id/registrations", controllers.EventRoster(cfg))
		admin.GET("/events/:id/participants", controllers.EventParticipants(cfg))
		admin.GET("/registrations", controllers.AllRegistrations(cfg))
		admin.GET("/teams/orphans", controllers.OrphanTeams(cfg))

		admin.PUT("/events/:id/winners", controllers.SetWinners(cfg))

		admin.POST("/events/:id/attendance", controllers.MarkEventAttendance(cfg))
		admin.PATCH("/events/:id/attendance", controllers.MarkRegistrationAttendance(cfg))
		admin.POST("/events/:id/participant-attendance", controllers.MarkParticipantAttendance(cfg))

		admin.POST("/invites", controllers.GenerateAdminInvite(cfg))
		admin.POST("/admins", controllers.CreateAdmin(cfg))
		admin.PATCH("/admins/:id/password", controllers.ChangeAdminPassword(cfg))
	}
}
