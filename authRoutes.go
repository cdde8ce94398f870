package main

import (
	"net/http"

	"bitbucket.org/mmdatafocus/stock_backend/middlewares"
	"bitbucket.org/mmdatafocus/stock_backend/models"
	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func registerAuthRoutes(api *gin.RouterGroup) {
	api.POST("/register", registerHandler)
	api.POST("/login", loginHandler)
	api.POST("/logout", middlewares.RequireAuth(), logoutHandler)
	api.GET("/users/:id", middlewares.RequireAuth(), getUserHandler)
}

func registerHandler(c *gin.Context) {
	var input models.NewUser
	if err := c.ShouldBindJSON(&input); err != nil {
		writeError(c, &models.ValidationError{Message: "invalid request body"})
		return
	}
	user, err := models.Register(c.Request.Context(), &input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func loginHandler(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		writeError(c, &models.ValidationError{Message: "username and password are required"})
		return
	}
	info, err := models.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func logoutHandler(c *gin.Context) {
	ok, err := models.Logout(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": ok})
}

func getUserHandler(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		writeError(c, err)
		return
	}
	user, err := models.GetUser(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
