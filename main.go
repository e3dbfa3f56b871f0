package main

import (
	"log"
	"os"

	"github.com/OSVTAC/osv-data-converter/convertsvc"
	"github.com/OSVTAC/osv-data-converter/filestorage"
	"github.com/joho/godotenv"
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading configuration from the environment")
	}
	basicAuthUserName := os.Getenv("USER_NAME")
	if basicAuthUserName == "" {
		log.Fatal("missing USER_NAME environment variable")
	}
	basicAuthPassword := os.Getenv("PASSWORD")
	if basicAuthPassword == "" {
		log.Fatal("missing PASSWORD environment variable")
	}
	baseDir := os.Getenv("BASE_DIR")
	if baseDir == "" {
		baseDir = "conversions"
	}
	var storage filestorage.FileStorage
	bucket := os.Getenv("BUCKET")
	if bucket != "" {
		storage = filestorage.NewGCSClient()
	}
	handler := convertsvc.New(baseDir, storage, bucket)
	e := echo.New()
	e.Use(middleware.BasicAuth(func(username, password string, c echo.Context) (bool, error) {
		return (username == basicAuthUserName && password == basicAuthPassword), nil
	}))
	e.POST("/conversions", handler.Post)
	e.GET("/conversions", handler.Get)
	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("server online at ", port)
	log.Fatal(e.Start(":" + port))
}
