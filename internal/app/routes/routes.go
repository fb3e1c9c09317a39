package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/mosc/eventadmin/internal/app/controllers"
	"github.com/mosc/eventadmin/internal/middleware"
	"github.com/mosc/eventadmin/internal/pkg/auth"
	"github.com/mosc/eventadmin/internal/pkg/websocket"
)

// Controllers groups every HTTP handler set the router mounts.
type Controllers struct {
	Pages       *controllers.PageController
	Proxy       *controllers.ProxyController
	Media       *controllers.MediaController
	Sponsors    *controllers.SponsorController
	Polls       *controllers.PollController
	WhatsApp    *controllers.WhatsAppController
	Settings    *controllers.WhatsAppSettingsController
	Campaigns   *controllers.CampaignController
	Templates   *controllers.TemplateController
	Committee   *controllers.CommitteeController
	Profiles    *controllers.UserProfileController
	Gallery     *controllers.GalleryController
	System      *controllers.SystemController
	CampaignsWS *websocket.Handler
}

// Guards are the middleware applied to route groups rather than globally.
type Guards struct {
	Auth      *middleware.AuthMiddleware
	CSRF      gin.HandlerFunc
	CORS      gin.HandlerFunc
	RateLimit gin.HandlerFunc
	// SignInLimit throttles credential attempts separately from API traffic.
	SignInLimit gin.HandlerFunc
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, g Guards) {
	adminOnly := []gin.HandlerFunc{g.Auth.SessionAuth(), g.Auth.RoleRequired(auth.AdminRole)}

	// --- Server-rendered pages ---
	pages := router.Group("")
	pages.Use(g.CSRF, g.Auth.OptionalSession())
	{
		pages.GET("/", c.Pages.Landing)
		pages.GET("/about", c.Pages.About)
		pages.GET("/gallery", c.Pages.Gallery)
		pages.GET("/gallery/:album", c.Pages.Album)

		pages.GET(middleware.SignInPath, c.Pages.SignInForm)
		pages.POST(middleware.SignInPath, g.SignInLimit, c.Pages.SignIn)
		pages.POST("/sign-out", c.Pages.SignOut)

		admin := pages.Group("/admin", adminOnly...)
		{
			admin.GET("", c.Pages.Admin)
			admin.POST("/gallery", c.Pages.AdminUploadPhotos)
			admin.POST("/gallery/:album/:name/delete", c.Pages.AdminDeletePhoto)
		}
	}

	api := router.Group("/api")
	api.Use(g.CORS)

	// --- Backend passthrough ---
	// Upload endpoints are dispatched inside Forward so the static paths do
	// not collide with the :resource wildcard.
	proxy := api.Group("/proxy", g.RateLimit)
	proxy.Use(adminOnly...)
	{
		proxy.Any("/:resource", c.Proxy.Forward)
		proxy.Any("/:resource/*path", c.Proxy.Forward)
	}

	v1 := api.Group("/v1")
	v1.GET("/health", c.System.Health)

	// Public gallery reads
	v1.GET("/gallery", c.Gallery.ListAlbums)
	v1.GET("/gallery/:album", c.Gallery.ListPhotos)

	authenticated := v1.Group("", adminOnly...)
	{
		authenticated.POST("/gallery/:album", c.Gallery.UploadPhotos)
		authenticated.DELETE("/gallery/:album/:name", c.Gallery.DeletePhoto)

		events := authenticated.Group("/events/:eventId")
		{
			events.GET("/media", c.Media.ListEventMedia)
			events.POST("/media", c.Media.UploadMedia)
			events.GET("/documents", c.Media.ListOfficialDocuments)
			events.GET("/sponsors", c.Sponsors.ListEventSponsors)
			events.GET("/sponsors/available", c.Sponsors.AvailableSponsors)
		}

		media := authenticated.Group("/media")
		{
			media.PATCH("/:id", c.Media.UpdateMedia)
			media.DELETE("/:id", c.Media.DeleteMedia)
		}

		sponsors := authenticated.Group("/sponsors")
		{
			sponsors.GET("", c.Sponsors.ListSponsors)
			sponsors.POST("", c.Sponsors.CreateSponsor)
			sponsors.GET("/:id", c.Sponsors.GetSponsor)
			sponsors.PATCH("/:id", c.Sponsors.UpdateSponsor)
			sponsors.DELETE("/:id", c.Sponsors.DeleteSponsor)
		}

		assignments := authenticated.Group("/sponsor-assignments")
		{
			assignments.POST("", c.Sponsors.AssignSponsor)
			assignments.PATCH("/:id", c.Sponsors.UpdateAssignment)
			assignments.DELETE("/:id", c.Sponsors.RemoveAssignment)
		}

		polls := authenticated.Group("/polls")
		{
			polls.GET("", c.Polls.ListPolls)
			polls.POST("", c.Polls.CreatePoll)
			polls.GET("/:id", c.Polls.GetPoll)
			polls.PUT("/:id", c.Polls.UpdatePoll)
			polls.DELETE("/:id", c.Polls.DeletePoll)
			polls.POST("/:id/activate", c.Polls.ActivatePoll)
			polls.POST("/:id/deactivate", c.Polls.DeactivatePoll)
			polls.GET("/:id/status", c.Polls.PollStatus)
			polls.GET("/:id/results", c.Polls.PollResults)
			polls.GET("/:id/options", c.Polls.ListOptions)
			polls.POST("/:id/options", c.Polls.CreateOption)
			polls.PUT("/:id/options", c.Polls.ReplaceOptions)
			polls.GET("/:id/responses", c.Polls.ListResponses)
		}
		authenticated.PATCH("/poll-options/:id", c.Polls.UpdateOption)
		authenticated.DELETE("/poll-options/:id", c.Polls.DeleteOption)
		authenticated.POST("/poll-responses", c.Polls.CreateResponse)
		authenticated.DELETE("/poll-responses/:id", c.Polls.DeleteResponse)

		scheduler := authenticated.Group("/poll-scheduler")
		{
			scheduler.GET("/status", c.Polls.SchedulerStatus)
			scheduler.GET("/upcoming", c.Polls.UpcomingChanges)
			scheduler.POST("/run", c.Polls.RunScheduler)
		}

		whatsapp := authenticated.Group("/whatsapp")
		{
			whatsapp.POST("/messages", c.WhatsApp.SendMessage)
			whatsapp.GET("/messages/:messageId", c.WhatsApp.MessageStatus)
			whatsapp.GET("/bulk", c.WhatsApp.BulkHistory)
			whatsapp.POST("/bulk", c.WhatsApp.SendBulk)
			whatsapp.GET("/bulk/:bulkId/progress", c.WhatsApp.BulkProgress)
			whatsapp.POST("/bulk/:bulkId/cancel", c.WhatsApp.CancelBulk)
			whatsapp.POST("/bulk/:bulkId/retry", c.WhatsApp.RetryFailed)
			whatsapp.GET("/analytics", c.WhatsApp.Analytics)
			whatsapp.POST("/phone-validation", c.WhatsApp.ValidatePhones)

			whatsapp.GET("/settings", c.Settings.GetSettings)
			whatsapp.PATCH("/settings", c.Settings.UpdateSettings)
			whatsapp.PUT("/settings/credentials", c.Settings.SaveCredentials)
			whatsapp.POST("/settings/test-connection", c.Settings.TestConnection)

			whatsapp.GET("/templates", c.Templates.ListTemplates)
			whatsapp.POST("/templates", c.Templates.SaveTemplate)
			whatsapp.POST("/templates/preview", c.Templates.PreviewTemplate)

			campaigns := whatsapp.Group("/campaigns")
			{
				campaigns.GET("", c.Campaigns.ListCampaigns)
				campaigns.POST("", c.Campaigns.CreateCampaign)
				campaigns.GET("/:id", c.Campaigns.GetCampaign)
				campaigns.DELETE("/:id", c.Campaigns.DeleteCampaign)
				campaigns.GET("/:id/events", c.Campaigns.CampaignEvents)
				campaigns.PUT("/:id/compose", c.Campaigns.SaveCompose)
				campaigns.PUT("/:id/recipients", c.Campaigns.SaveRecipients)
				campaigns.PUT("/:id/schedule", c.Campaigns.SaveSchedule)
				campaigns.POST("/:id/step", c.Campaigns.GoToStep)
				campaigns.POST("/:id/back", c.Campaigns.PreviousStep)
				campaigns.POST("/:id/submit", c.Campaigns.SubmitCampaign)
				campaigns.POST("/:id/cancel", c.Campaigns.CancelCampaign)
				campaigns.GET("/:id/ws", c.CampaignsWS.HandleConnection)
			}
		}

		committee := authenticated.Group("/committee-members")
		{
			committee.GET("", c.Committee.ListMembers)
			committee.POST("", c.Committee.CreateMember)
			committee.GET("/:id", c.Committee.GetMember)
			committee.PATCH("/:id", c.Committee.UpdateMember)
			committee.DELETE("/:id", c.Committee.DeleteMember)
			committee.PUT("/:id/profile-image", c.Committee.SetProfileImage)
			committee.POST("/:id/profile-image", c.Committee.UploadProfileImage)
		}

		profiles := authenticated.Group("/user-profiles")
		{
			profiles.GET("", c.Profiles.ListProfiles)
			profiles.GET("/by-user/:userId", c.Profiles.GetProfileByUserID)
			profiles.GET("/:id", c.Profiles.GetProfile)
			profiles.PATCH("/:id", c.Profiles.UpdateProfile)
		}
	}
}
