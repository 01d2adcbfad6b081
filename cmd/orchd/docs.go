package main

// General API documentation for swaggo. Run `make swagger-gen` to generate docs.
//
// @title           orchd API
// @version         1.0
// @description     HTTP API for VRAM-budgeted model orchestration: load, unload, mode switching, generation and live status.
//
// @contact.name   orchd maintainers
// @contact.url    https://github.com/your-org/orchd
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
