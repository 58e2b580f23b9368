// Package docs holds the OpenAPI description served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}}
            }
        },
        "/auth/sign-up": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Create operator",
                "parameters": [{"description": "credentials", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.authCredentials"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "integer"}}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/auth/sign-in": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Issue token",
                "parameters": [{"description": "credentials", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.authCredentials"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/history": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Newest first. If 'to' is date-only, it is treated as end-of-day inclusive.",
                "produces": ["application/json"],
                "tags": ["history"],
                "summary": "List threshold crossings",
                "parameters": [
                    {"type": "string", "example": "2025-08-01", "description": "Start of range", "name": "from", "in": "query"},
                    {"type": "string", "example": "2025-08-31", "description": "End of range", "name": "to", "in": "query"},
                    {"enum": ["Armed Mode", "Windy Mode", "Mode Change Failed"], "type": "string", "description": "Mode label", "name": "label", "in": "query"},
                    {"type": "integer", "description": "Max records", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "count, records", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/status": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["poller"],
                "summary": "Poller status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.StatusReport"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/poll": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["poller"],
                "summary": "Run one poll cycle",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.PollResult"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "handlers.authCredentials": {
            "type": "object",
            "required": ["password", "username"],
            "properties": {"password": {"type": "string"}, "username": {"type": "string"}}
        },
        "models.HistoryRecord": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "seq": {"type": "integer"},
                "wind_speed_mph": {"type": "number"},
                "recorded_at": {"type": "string"},
                "mode_label": {"type": "string"}
            }
        },
        "models.PollState": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "last_polled_at": {"type": "string"},
                "last_wind_speed_mph": {"type": "number"},
                "last_result": {"type": "string"},
                "last_error": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "models.WindReading": {
            "type": "object",
            "properties": {"speed_mph": {"type": "number"}, "observed_at": {"type": "string"}}
        },
        "service.PollResult": {
            "type": "object",
            "properties": {
                "result": {"type": "string"},
                "reading": {"$ref": "#/definitions/models.WindReading"},
                "last_mph": {"type": "number"},
                "target": {"type": "string"},
                "mode_label": {"type": "string"},
                "record": {"$ref": "#/definitions/models.HistoryRecord"},
                "error": {"type": "string"}
            }
        },
        "service.StatusReport": {
            "type": "object",
            "properties": {
                "poll_state": {"$ref": "#/definitions/models.PollState"},
                "latest": {"$ref": "#/definitions/models.HistoryRecord"},
                "history_count": {"type": "integer"},
                "capacity": {"type": "integer"},
                "threshold_mph": {"type": "number"},
                "armed_mode": {"type": "string"},
                "windy_mode": {"type": "string"},
                "interval": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "windguard API",
	Description:      "Wind-driven camera mode switching: crossing history, poller status and manual polls.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
