package main

// General API documentation for swaggo. The generated OpenAPI document lives in fontd/docs.
//
// @title           fontd API
// @version         1.0
// @description     HTTP API for remote web-font acquisition and caching.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
