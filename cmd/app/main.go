package main

import (
	"github.com/humanbelnik/kinoshelf/internal/app"
	"github.com/humanbelnik/kinoshelf/internal/config"
)

// @title kinoshelf API
// @version 1.0
// @description Movie catalog, reviews and AI recommendations for the kinoshelf front end.
// @BasePath /api/v1
func main() {
	app.Go(config.Load())
}
