package routes

import (
	"github.com/gin-gonic/gin"

	config "github.com/gatherly/gatherly-api/config"
	controllers "github.com/gatherly/gatherly-api/controllers"
	middleware "github.com/gatherly/gatherly-api/middleware"
	services "github.com/gatherly/gatherly-api/services"
)

// Deps bundles everything the route table wires together.
type Deps struct {
	Config   *config.Config
	Users    *services.UserService
	Events   *services.EventService
	Social   *services.SocialService
	Ratings  *services.RatingService
	Comments *services.CommentService
	Admin    *services.AdminService

	// UserStore is what the auth middleware re-reads accounts from.
	UserStore services.UserStore
}

func SetupRoutes(r *gin.Engine, d Deps) {
	// public
	r.POST("/auth/register", controllers.Register(d.Users))
	r.POST("/auth/login", controllers.Login(d.Users, d.Config))

	// protected
	auth := middleware.AuthMiddleware(d.Config.JWTSecret, d.UserStore)

	users := r.Group("/users")
	users.Use(auth)
	{
		users.GET("/me", controllers.GetMe(d.Users))
		users.PATCH("/me", controllers.UpdateProfile(d.Users))
		users.DELETE("/me", controllers.DeleteAccount(d.Users))
		users.GET("/suggested", controllers.SuggestedUsers(d.Social))
		users.GET("/:id", controllers.GetUser(d.Users))
	}

	friends := r.Group("/friends")
	friends.Use(auth)
	{
		friends.POST("/requests/:id", controllers.SendFriendRequest(d.Social))
		friends.POST("/requests/:id/accept", controllers.AcceptFriendRequest(d.Social))
		friends.POST("/requests/:id/reject", controllers.RejectFriendRequest(d.Social))
		friends.DELETE("/requests/:id", controllers.CancelFriendRequest(d.Social))
		friends.DELETE("/:id", controllers.RemoveFriend(d.Social))
	}

	events := r.Group("/events")
	events.Use(auth)
	{
		events.POST("", controllers.CreateEvent(d.Events))
		events.GET("", controllers.ListEvents(d.Events))
		events.GET("/:id", controllers.GetEvent(d.Events))
		events.PATCH("/:id", controllers.UpdateEvent(d.Events))
		events.DELETE("/:id", controllers.DeleteEvent(d.Events))

		events.POST("/:id/register", controllers.RegisterForEvent(d.Events))
		events.DELETE("/:id/register", controllers.CancelRegistration(d.Events))
		events.GET("/:id/spots", controllers.AvailableSpots(d.Events))

		events.POST("/:id/ratings", controllers.CreateRating(d.Ratings))
		events.GET("/:id/ratings/average", controllers.EventAverageRating(d.Ratings))
		events.DELETE("/:id/ratings", controllers.CancelRating(d.Ratings))

		events.POST("/:id/comments", controllers.CreateComment(d.Comments))
		events.GET("/:id/comments", controllers.ListComments(d.Comments))
	}

	comments := r.Group("/comments")
	comments.Use(auth)
	{
		comments.PATCH("/:id", controllers.UpdateComment(d.Comments))
		comments.DELETE("/:id", controllers.DeleteComment(d.Comments))
		comments.DELETE("/:id/moderate", controllers.ModerateComment(d.Comments))
	}

	admin := r.Group("/admin")
	admin.Use(auth, middleware.RequireAdmin())
	{
		admin.POST("/users/:id/ban", controllers.BanUser(d.Admin))
		admin.DELETE("/users/:id/ban", controllers.UnbanUser(d.Admin))
	}
}
