// Package docs registers the OpenAPI description of the fontd HTTP API with swag.
// It is imported by the swagger build of internal/httpapi.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}",
        "license": {"name": "MIT", "url": "https://opensource.org/licenses/MIT"}
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/status": {"get": {"summary": "Daemon status", "produces": ["application/json"],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}}}}},
        "/fonts": {"get": {"summary": "List catalog families", "produces": ["application/json"],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.FamiliesResponse"}},
                "502": {"description": "Catalog unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}}}},
        "/fonts/load": {"post": {"summary": "Request a family load", "consumes": ["application/json"], "produces": ["application/json"],
            "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/types.LoadRequest"}}],
            "responses": {"202": {"description": "Accepted", "schema": {"$ref": "#/definitions/types.LoadResponse"}},
                "400": {"description": "Bad request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                "404": {"description": "Unknown family", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                "429": {"description": "Skipped on a slow link", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}}}},
        "/fonts/{family}": {"get": {"summary": "Family load state", "produces": ["application/json"],
            "parameters": [{"in": "path", "name": "family", "type": "string", "required": true}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.FamilyStatus"}},
                "404": {"description": "Never requested", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}}}},
        "/fonts/{family}/retry": {"post": {"summary": "Retry a failed family after its backoff delay", "produces": ["application/json"],
            "parameters": [{"in": "path", "name": "family", "type": "string", "required": true}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.RetryResponse"}}}}},
        "/fonts/{family}/binary": {"get": {"summary": "Outline payload nearest to weight and style", "produces": ["application/octet-stream"],
            "parameters": [{"in": "path", "name": "family", "type": "string", "required": true},
                {"in": "query", "name": "weight", "type": "integer"},
                {"in": "query", "name": "style", "type": "string", "enum": ["normal", "italic"]}],
            "responses": {"200": {"description": "Font bytes"},
                "404": {"description": "Unknown family", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}}}},
        "/network": {"post": {"summary": "Update host network signals", "consumes": ["application/json"], "produces": ["application/json"],
            "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/types.NetworkRequest"}}],
            "responses": {"200": {"description": "Signals after the update", "schema": {"$ref": "#/definitions/types.NetworkRequest"}}}}},
        "/healthz": {"get": {"summary": "Liveness", "responses": {"200": {"description": "ok"}}}},
        "/readyz": {"get": {"summary": "Readiness", "responses": {"200": {"description": "ready"}, "503": {"description": "loading"}}}}
    },
    "definitions": {
        "types.Variant": {"type": "object", "properties": {"weight": {"type": "integer", "example": 400}, "style": {"type": "string", "example": "normal"}}},
        "types.Family": {"type": "object", "properties": {"family": {"type": "string"}, "category": {"type": "string"},
            "variants": {"type": "array", "items": {"$ref": "#/definitions/types.Variant"}}}},
        "types.FamiliesResponse": {"type": "object", "properties": {"families": {"type": "array", "items": {"$ref": "#/definitions/types.Family"}}}},
        "types.LoadRequest": {"type": "object", "properties": {"family": {"type": "string", "example": "Roboto"},
            "priority": {"type": "string", "example": "high"}, "purpose": {"type": "string", "example": "text-editing"},
            "weight": {"type": "integer", "example": 400}, "style": {"type": "string", "example": "normal"}, "force_reload": {"type": "boolean"}}},
        "types.LoadResponse": {"type": "object", "properties": {"family": {"type": "string"}, "state": {"type": "string", "example": "active"}}},
        "types.NetworkRequest": {"type": "object", "properties": {"online": {"type": "boolean"}, "slow_link": {"type": "boolean"}}},
        "types.RetryResponse": {"type": "object", "properties": {"family": {"type": "string"}, "retried": {"type": "boolean"}}},
        "types.FamilyStatus": {"type": "object", "properties": {"family": {"type": "string"}, "state": {"type": "string"},
            "purpose": {"type": "string"}, "attempts": {"type": "integer"}, "last_error": {"type": "string"},
            "last_attempt_unix": {"type": "integer"}, "variants": {"type": "array", "items": {"$ref": "#/definitions/types.Variant"}},
            "registered": {"type": "array", "items": {"type": "string"}}}},
        "types.CatalogStatus": {"type": "object", "properties": {"families": {"type": "integer"}, "age_seconds": {"type": "integer"},
            "hits": {"type": "integer"}, "misses": {"type": "integer"}, "fetches": {"type": "integer"}, "fetch_errors": {"type": "integer"}}},
        "types.StatusResponse": {"type": "object", "properties": {"online": {"type": "boolean"}, "slow_link": {"type": "boolean"},
            "active_loads": {"type": "integer"}, "max_active": {"type": "integer"}, "queue_depth": {"type": "integer"},
            "requests_total": {"type": "integer"}, "succeeded_total": {"type": "integer"}, "failed_total": {"type": "integer"},
            "binary_cache_entries": {"type": "integer"}, "resources": {"type": "integer"}, "registered": {"type": "integer"},
            "catalog": {"$ref": "#/definitions/types.CatalogStatus"},
            "families": {"type": "array", "items": {"$ref": "#/definitions/types.FamilyStatus"}},
            "uptime_seconds": {"type": "integer"}, "server_time_unix": {"type": "integer"}}},
        "types.ErrorResponse": {"type": "object", "properties": {"error": {"type": "string"}, "code": {"type": "integer"}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "fontd API",
	Description:      "HTTP API for remote web-font acquisition and caching.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
