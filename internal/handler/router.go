package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jntcloudcod2019/challenge-fiap-api/internal/middleware"
	"github.com/jntcloudcod2019/challenge-fiap-api/internal/models"
)

// Handlers groups the resource handlers mounted under the API prefix.
type Handlers struct {
	Auth        *AuthHandler
	Users       *UserHandler
	Classes     *ClassHandler
	Students    *StudentHandler
	Enrollments *EnrollmentHandler
}

// RegisterRoutes mounts every API route on r. Only register and login skip authentication.
func RegisterRoutes(r gin.IRouter, tokens middleware.TokenValidator, h Handlers) {
	authn := middleware.JWT(tokens)
	admin := middleware.RequireRoles(models.RoleAdmin)
	student := middleware.RequireRoles(models.RoleStudent)

	auth := r.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.GET("/me", authn, h.Auth.Me)
	auth.GET("/validate", authn, h.Auth.Validate)
	auth.GET("/admin-only", authn, admin, h.Auth.AdminOnly)

	users := r.Group("/users", authn, admin)
	users.POST("", h.Users.Create)
	users.GET("", h.Users.List)
	users.GET("/search", h.Users.Search)
	users.GET("/count", h.Users.Count)
	users.GET("/:query", h.Users.Get)
	users.PUT("/:query", h.Users.Update)
	users.PATCH("/:query", h.Users.Update)
	users.DELETE("/:query", h.Users.Delete)

	classes := r.Group("/classes", authn)
	classes.POST("", admin, h.Classes.Create)
	classes.GET("", h.Classes.List)
	classes.GET("/search", h.Classes.Search)
	classes.GET("/code/:code", h.Classes.GetByCode)
	classes.GET("/code/:code/roster", admin, h.Classes.Roster)
	classes.PUT("/code/:code", admin, h.Classes.Update)
	classes.DELETE("/code/:code", admin, h.Classes.Delete)

	students := r.Group("/students", authn)
	students.POST("", admin, h.Students.Create)
	students.GET("", h.Students.List)
	students.GET("/search", h.Students.Search)
	students.GET("/statistics", h.Students.Statistics)
	students.GET("/me", student, h.Students.Me)
	students.GET("/ra/:ra", h.Students.GetByRegistrationNumber)
	students.GET("/find/:term", h.Students.Find)
	students.PUT("/:query", admin, h.Students.Update)
	students.DELETE("/:query", admin, h.Students.Delete)

	enrollments := r.Group("/enrollments", authn)
	enrollments.POST("", admin, h.Enrollments.Create)
	enrollments.GET("", h.Enrollments.List)
	enrollments.GET("/search", h.Enrollments.Search)
	enrollments.GET("/me", student, h.Enrollments.Me)
	enrollments.GET("/student/:query", h.Enrollments.ByStudent)
	enrollments.GET("/class/:code", h.Enrollments.ByClass)
	enrollments.GET("/:id", h.Enrollments.Get)
	enrollments.PUT("/:id", admin, h.Enrollments.Update)
	enrollments.PATCH("/:id", admin, h.Enrollments.Update)
	enrollments.DELETE("/:id", admin, h.Enrollments.Delete)
}
