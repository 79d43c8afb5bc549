// Package docs registers the OpenAPI description served at /docs.
// Regenerate with: swag init -g cmd/api/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "Scoracle"
        },
        "license": {
            "name": "MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/players/{playerID}": {
            "get": {
                "description": "Returns the roster entry and all scored weeks, keyed by year then week.",
                "produces": ["application/json"],
                "tags": ["players"],
                "summary": "Get player document",
                "parameters": [
                    {"type": "string", "description": "nflverse GSIS player id", "name": "playerID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.PlayerDocumentResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/players/{playerID}/{year}/{week}": {
            "get": {
                "description": "Returns the scored record for a player in one week. Weeks with no activity read as all-zero.",
                "produces": ["application/json"],
                "tags": ["players"],
                "summary": "Get player week",
                "parameters": [
                    {"type": "string", "description": "nflverse GSIS player id", "name": "playerID", "in": "path", "required": true},
                    {"type": "integer", "description": "Season year", "name": "year", "in": "path", "required": true},
                    {"type": "integer", "description": "Week number", "name": "week", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.PlayerWeekResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/defenses/{team}/{year}/{week}": {
            "get": {
                "description": "Returns the scored defense/special-teams record for a team in one week. Weeks with no activity read as all-zero.",
                "produces": ["application/json"],
                "tags": ["defenses"],
                "summary": "Get defense week",
                "parameters": [
                    {"type": "string", "example": "KC", "description": "Team abbreviation", "name": "team", "in": "path", "required": true},
                    {"type": "integer", "description": "Season year", "name": "year", "in": "path", "required": true},
                    {"type": "integer", "description": "Week number", "name": "week", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.DefenseWeekResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handler.PlayerWeekResponse": {
            "type": "object",
            "properties": {
                "player_id": {"type": "string"},
                "year": {"type": "integer"},
                "week": {"type": "integer"},
                "roster": {"$ref": "#/definitions/roster.Entry"},
                "stats": {"type": "object", "additionalProperties": {"type": "integer"}}
            }
        },
        "handler.DefenseWeekResponse": {
            "type": "object",
            "properties": {
                "team": {"type": "string"},
                "year": {"type": "integer"},
                "week": {"type": "integer"},
                "stats": {"type": "object", "additionalProperties": {"type": "integer"}}
            }
        },
        "handler.PlayerDocumentResponse": {
            "type": "object",
            "properties": {
                "player_id": {"type": "string"},
                "roster": {"$ref": "#/definitions/roster.Entry"},
                "scoring": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "object",
                        "additionalProperties": {
                            "type": "object",
                            "additionalProperties": {"type": "integer"}
                        }
                    }
                }
            }
        },
        "roster.Entry": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "position": {"type": "string", "enum": ["QB", "RB", "WR", "TE", "K"]},
                "team": {"type": "string"}
            }
        },
        "respond.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/respond.ErrorBody"}
            }
        },
        "respond.ErrorBody": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "detail": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8000",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "Scoracle Fantasy API",
	Description:      "Read-only fantasy-football scoring records for players and team defenses.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
