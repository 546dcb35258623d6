package main

import (
	"os"

	"novamind/backend/internal/app"
)

// @title           NovaMind API
// @version         1.0
// @description     Chat backend for the NovaMind assistant.
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	os.Exit(app.Run())
}
